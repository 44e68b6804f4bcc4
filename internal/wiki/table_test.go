package wiki

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestTableRoundTrip(t *testing.T) {
    rows := [][]string{
        {"https://crates.io/crates/chrono", "chrono", "0.4.19"},
        {"id{code}and|pipe{code}", "{code}name{code}", "ver|sion"},
    }
    blob := EncodeTable([]string{"id", "name", "version"}, rows)
    assert.True(t, strings.HasPrefix(blob, "||*id*||*name*||*version*||\n"))

    got, err := DecodeTable(blob, 3)
    require.NoError(t, err)
    assert.Equal(t, rows, got)
}

func TestDecodeTableEmpty(t *testing.T) {
    for _, blob := range []string{"", "  \n", "||*id*||*name*||\n"} {
        rows, err := DecodeTable(blob, 2)
        require.NoError(t, err)
        assert.Nil(t, rows, "blob %q", blob)
    }
}

func TestDecodeTableWrongColumnCount(t *testing.T) {
    blob := "||*a*||*b*||\n|only one cell|\n"
    _, err := DecodeTable(blob, 2)
    require.Error(t, err)
    assert.Contains(t, err.Error(), "expected 2 columns")

    _, err = DecodeTable("||*a*||\nno pipes at all\n", 1)
    assert.Error(t, err)
}

// A blob as it comes back from the tracker after being stored, not one
// produced by EncodeTable in the same process.
func TestDecodeTableStoredBlob(t *testing.T) {
    blob := "||*id*||*name*||*version*||\n" +
        "|https://crates.io/crates/chrono|chrono|0.4.19|\n" +
        "|https://crates.io/crates/syn|syn|1.0|\n"
    rows, err := DecodeTable(blob, 3)
    require.NoError(t, err)
    assert.Equal(t, [][]string{
        {"https://crates.io/crates/chrono", "chrono", "0.4.19"},
        {"https://crates.io/crates/syn", "syn", "1.0"},
    }, rows)
}

func TestMatrixRoundTrip(t *testing.T) {
    columns := []string{"CVE-123", "na|me{code}"}
    rows := []MatrixRow{
        {Label: "chrono", Cells: [][]string{{"1.1", "2.0"}, nil}},
        {Label: "fl dep", Cells: [][]string{{"3.0 alpha"}, {"1;2", ";3"}}},
    }
    blob := EncodeMatrix("dep / vuln", columns, rows)
    assert.True(t, strings.HasPrefix(blob, "||*dep / vuln*||*CVE-123*||"))

    gotCols, gotRows, err := DecodeMatrix(blob)
    require.NoError(t, err)
    assert.Equal(t, columns, gotCols)
    assert.Equal(t, rows, gotRows)
}

// Hand-edited issues drop the bold markers on headers and labels; the decoder
// accepts both forms.
func TestDecodeMatrixWithoutBoldHeaders(t *testing.T) {
    blob := "||*dep / vuln*||RUSTSEC-2020-0159||RUSTSEC-2022-0051||\n" +
        "||*chrono*|0.4.20;>=0.5.0||\n" +
        "||*syn*||>=1.9.4|\n"
    columns, rows, err := DecodeMatrix(blob)
    require.NoError(t, err)
    assert.Equal(t, []string{"RUSTSEC-2020-0159", "RUSTSEC-2022-0051"}, columns)
    assert.Equal(t, []MatrixRow{
        {Label: "chrono", Cells: [][]string{{"0.4.20", ">=0.5.0"}, nil}},
        {Label: "syn", Cells: [][]string{nil, {">=1.9.4"}}},
    }, rows)
}

func TestDecodeMatrixMalformed(t *testing.T) {
    _, _, err := DecodeMatrix("||*dep / vuln*||*v*||\n|no double pipe lead|\n")
    assert.Error(t, err)

    _, _, err = DecodeMatrix("||*dep / vuln*||*a*||*b*||\n||*label*|one cell only|\n")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "expected 2 columns")
}

func TestBulletsRoundTrip(t *testing.T) {
    items := []string{"project A", "|proj2", "pr{code}oject3|"}
    blob := EncodeBullets(items)
    assert.Equal(t, "* project A\n* \\|proj2\n* pr\\{code}oject3\\|\n", blob)
    assert.Equal(t, items, DecodeBullets(blob))

    assert.Nil(t, DecodeBullets(""))
}
