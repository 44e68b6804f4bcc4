package wiki

import (
    "fmt"
    "strings"
)

// EncodeTable renders rows as a wiki table with a bold header line:
//
//     ||*id*||*name*||*version*||
//     |cell|cell|cell|
//
// Column names are fixed literals and written as-is; cell values pass
// through Escape so embedded delimiters survive a round trip.
func EncodeTable(columns []string, rows [][]string) string {
    var b strings.Builder
    b.WriteString("||")
    for _, c := range columns {
        b.WriteString("*" + c + "*||")
    }
    b.WriteString("\n")
    for _, row := range rows {
        b.WriteString("|")
        for _, cell := range row {
            b.WriteString(Escape(cell) + "|")
        }
        b.WriteString("\n")
    }
    return b.String()
}

// DecodeTable is the inverse of EncodeTable. An empty or absent blob decodes
// to no rows; a row with the wrong number of cells is an error.
func DecodeTable(blob string, columns int) ([][]string, error) {
    lines := tableLines(blob)
    if len(lines) == 0 { return nil, nil }
    var rows [][]string
    for _, line := range lines[1:] { // first line is the header
        cells := splitCells(line, "|")
        // a well-formed row is |c|c|...|, so the split yields empty
        // fragments before the first and after the last delimiter
        if len(cells) != columns+2 || cells[0] != "" || cells[len(cells)-1] != "" {
            return nil, fmt.Errorf("table row %q: expected %d columns", line, columns)
        }
        row := make([]string, 0, columns)
        for _, c := range cells[1 : len(cells)-1] { row = append(row, Unescape(c)) }
        rows = append(rows, row)
    }
    return rows, nil
}

// MatrixRow is one labelled row of a sparse matrix; Cells[i] holds the
// ordered values for column i and is empty where the matrix has no entry.
type MatrixRow struct {
    Label string
    Cells [][]string
}

// EncodeMatrix renders a two-axis table with bold row labels:
//
//     ||*dep / vuln*||*CVE-123*||*CVE-456*||
//     ||*chrono*|1.1;2.0||
//
// Cell values are escaped individually and joined with the value separator.
func EncodeMatrix(corner string, columns []string, rows []MatrixRow) string {
    var b strings.Builder
    b.WriteString("||*" + corner + "*||")
    for _, c := range columns {
        b.WriteString("*" + Escape(c) + "*||")
    }
    b.WriteString("\n")
    for _, row := range rows {
        b.WriteString("||*" + Escape(row.Label) + "*|")
        for _, cell := range row.Cells {
            escaped := make([]string, 0, len(cell))
            for _, v := range cell { escaped = append(escaped, Escape(v)) }
            b.WriteString(strings.Join(escaped, ";") + "|")
        }
        b.WriteString("\n")
    }
    return b.String()
}

// DecodeMatrix is the inverse of EncodeMatrix. Column headers and row labels
// are accepted with or without the bold markers.
func DecodeMatrix(blob string) ([]string, []MatrixRow, error) {
    lines := tableLines(blob)
    if len(lines) == 0 { return nil, nil, nil }
    head := splitCells(lines[0], "||")
    if len(head) < 3 || head[0] != "" || head[len(head)-1] != "" {
        return nil, nil, fmt.Errorf("matrix header %q: malformed", lines[0])
    }
    columns := make([]string, 0, len(head)-3)
    for _, c := range head[2 : len(head)-1] { columns = append(columns, Unescape(unbold(c))) }
    var rows []MatrixRow
    for _, line := range lines[1:] {
        cells := splitCells(line, "|")
        // rows look like ||*label*|cell|...|, splitting into two leading and
        // one trailing empty fragment around the label and cells
        if len(cells) < 4 || cells[0] != "" || cells[1] != "" || cells[len(cells)-1] != "" {
            return nil, nil, fmt.Errorf("matrix row %q: malformed", line)
        }
        row := MatrixRow{Label: Unescape(unbold(cells[2]))}
        for _, c := range cells[3 : len(cells)-1] { row.Cells = append(row.Cells, splitValues(c)) }
        if len(row.Cells) != len(columns) {
            return nil, nil, fmt.Errorf("matrix row %q: expected %d columns", line, len(columns))
        }
        rows = append(rows, row)
    }
    return columns, rows, nil
}

// EncodeBullets renders items as a flat wiki bullet list, one "* item" line
// per entry.
func EncodeBullets(items []string) string {
    var b strings.Builder
    for _, it := range items {
        b.WriteString("* " + Escape(it) + "\n")
    }
    return b.String()
}

func DecodeBullets(blob string) []string {
    var items []string
    for _, line := range tableLines(blob) {
        items = append(items, Unescape(strings.TrimPrefix(line, "* ")))
    }
    return items
}

func tableLines(blob string) []string {
    var lines []string
    for _, l := range strings.Split(blob, "\n") {
        if strings.TrimSpace(l) == "" { continue }
        lines = append(lines, l)
    }
    return lines
}

func unbold(s string) string {
    if len(s) >= 2 && strings.HasPrefix(s, "*") && strings.HasSuffix(s, "*") {
        return s[1 : len(s)-1]
    }
    return s
}
