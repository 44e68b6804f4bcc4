package wiki

import "strings"

// Text custom fields on the board hold Jira wiki markup, where | delimits
// table cells, {code} suppresses rendering and ; joins version lists inside
// matrix cells. Escape prefixes those characters (and the escape character
// itself) with a backslash so cell content can never be read as structure.
// Escaping the opening brace alone is enough to defuse {code}. Unescape is
// the exact inverse: Unescape(Escape(s)) == s for every string.

const escapeChar = '\\'

func needsEscape(c byte) bool {
    return c == escapeChar || c == '|' || c == '{' || c == ';'
}

func Escape(s string) string {
    var b strings.Builder
    b.Grow(len(s) + 4)
    for i := 0; i < len(s); i++ {
        if needsEscape(s[i]) { b.WriteByte(escapeChar) }
        b.WriteByte(s[i])
    }
    return b.String()
}

func Unescape(s string) string {
    var b strings.Builder
    b.Grow(len(s))
    for i := 0; i < len(s); i++ {
        if s[i] == escapeChar && i+1 < len(s) { i++ }
        b.WriteByte(s[i])
    }
    return b.String()
}

// splitCells splits s on unescaped occurrences of sep (a run of pipes),
// keeping escape sequences intact so cells can be unescaped afterwards.
func splitCells(s, sep string) []string {
    var cells []string
    var cur strings.Builder
    for i := 0; i < len(s); {
        if s[i] == escapeChar && i+1 < len(s) {
            cur.WriteByte(s[i])
            cur.WriteByte(s[i+1])
            i += 2
            continue
        }
        if strings.HasPrefix(s[i:], sep) {
            cells = append(cells, cur.String())
            cur.Reset()
            i += len(sep)
            continue
        }
        cur.WriteByte(s[i])
        i++
    }
    cells = append(cells, cur.String())
    return cells
}

// splitValues splits a matrix cell on unescaped value separators.
func splitValues(cell string) []string {
    if cell == "" { return nil }
    raw := splitCells(cell, ";")
    out := make([]string, 0, len(raw))
    for _, v := range raw { out = append(out, Unescape(v)) }
    return out
}
