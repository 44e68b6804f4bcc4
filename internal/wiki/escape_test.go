package wiki

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestEscapeRoundTrip(t *testing.T) {
    cases := []string{
        "",
        "plain text",
        "a|b",
        "{code}",
        "id{code}and|pipe{code}",
        `back\slash`,
        `\`,
        "semi;colons;",
        `pre\|escaped input`,
        "|;{\\",
        "{code}stacked{code}|and;more",
    }
    for _, s := range cases {
        assert.Equal(t, s, Unescape(Escape(s)), "round trip of %q", s)
    }
}

func TestEscapeNeutralizesDelimiters(t *testing.T) {
    got := Escape("a|b{code}c;d")
    assert.Equal(t, `a\|b\{code}c\;d`, got)
    assert.NotContains(t, strings.ReplaceAll(got, `\|`, ""), "|")
}

// Strings that collide after a lossy escaping must stay distinct here.
func TestEscapeIsInjective(t *testing.T) {
    pairs := [][2]string{
        {"a|b", `a\|b`},
        {"{code}", `\{code}`},
        {"1;2", `1\;2`},
        {`\`, `\\`},
    }
    for _, p := range pairs {
        assert.NotEqual(t, Escape(p[0]), Escape(p[1]), "%q vs %q", p[0], p[1])
    }
}

func TestSplitCellsHonorsEscapes(t *testing.T) {
    cells := splitCells(`|a\|b|c|`, "|")
    assert.Equal(t, []string{"", `a\|b`, "c", ""}, cells)

    cells = splitCells(`||*a\|b*||c||`, "||")
    assert.Equal(t, []string{"", `*a\|b*`, "c", ""}, cells)
}
