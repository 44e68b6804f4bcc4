package findings

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/HamedShams/vuln-pulse/internal/domain"
)

func TestOpenFindingQuery(t *testing.T) {
    jql := openFindingQuery("repo", "scanner", "dep_id", "dep_ver")
    assert.Equal(t, `project = "PSEC" and issuetype = "Bug" and status != Done`+
        ` and cf[10401] ~ "repo" and cf[10402] ~ "scanner"`+
        ` and cf[10403] ~ "dep_id" and cf[10404] ~ "dep_ver"`, jql)
}

// The due date is stored as a calendar day, so the time of day is truncated
// on the way in and comes back as midnight UTC.
func TestDueDateTruncatesToUTCDay(t *testing.T) {
    noon := int64(1671840000 + 12*3600) // 2022-12-24 12:00:00 UTC
    assert.Equal(t, "2022-12-24", encodeDueDate(&noon))

    back, err := decodeDueDate("2022-12-24")
    require.NoError(t, err)
    require.NotNil(t, back)
    assert.Equal(t, int64(1671840000), *back)

    assert.Nil(t, encodeDueDate(nil))
    none, err := decodeDueDate("")
    require.NoError(t, err)
    assert.Nil(t, none)

    _, err = decodeDueDate("24.12.2022")
    var fe *FormatError
    require.ErrorAs(t, err, &fe)
    assert.Equal(t, "due_date", fe.Field)
}

func TestFixLabels(t *testing.T) {
    f := domain.Finding{
        VulnerableDependency:   domain.Dependency{FixVersions: map[string][]string{"v": {"1.1"}}},
        FirstLevelDependencies: []domain.Dependency{{FixVersions: map[string][]string{"v": {"2.0"}}}},
    }
    assert.Equal(t, []string{labelPatchVulnDepPublished, labelPatchAllDepPublished}, fixLabels(f))

    // one unpatched first-level dependency drops the all-deps label
    f.FirstLevelDependencies = append(f.FirstLevelDependencies, domain.Dependency{})
    assert.Equal(t, []string{labelPatchVulnDepPublished}, fixLabels(f))

    // no fix for the vulnerable dependency itself means no labels at all
    f.VulnerableDependency.FixVersions = nil
    assert.Empty(t, fixLabels(f))
}

func TestSummaryFormat(t *testing.T) {
    f := domain.Finding{
        Repository:           "ic",
        Scanner:              "cargo-audit",
        VulnerableDependency: domain.Dependency{Name: "chrono", Version: "0.4.19"},
    }
    assert.Equal(t, "[ic][cargo-audit] Vulnerability in chrono 0.4.19", summaryFor(f))
}

func TestDecodeScoreShapes(t *testing.T) {
    assert.Equal(t, 100, decodeScore(100))
    assert.Equal(t, 100, decodeScore(float64(100)))
    assert.Equal(t, 100, decodeScore("100"))
    assert.Equal(t, domain.ScoreUnset, decodeScore(nil))
    assert.Equal(t, domain.ScoreUnset, decodeScore("not a number"))
}
