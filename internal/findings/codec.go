package findings

import (
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/HamedShams/vuln-pulse/internal/domain"
    "github.com/HamedShams/vuln-pulse/internal/tracker"
    "github.com/HamedShams/vuln-pulse/internal/wiki"
)

// The board stores a finding as flat custom fields: scalars for the primary
// key, wiki tables for the nested collections, person references for users
// and an option reference for the risk. encodeFinding and decodeFinding are
// exact inverses for everything except the identity fields assigned on
// create and the time-of-day of the due date, which is truncated to a UTC
// calendar day.

const dueDateLayout = "2006-01-02"

var (
    dependencyColumns    = []string{"id", "name", "version"}
    vulnerabilityColumns = []string{"id", "name", "description", "score"}
)

const patchMatrixCorner = "dep / vuln"

func encodeFinding(f domain.Finding) map[string]any {
    return map[string]any{
        fieldProject:                     map[string]any{"key": boardKey},
        fieldIssueType:                   map[string]any{"name": findingIssueType},
        fieldSummary:                     summaryFor(f),
        fieldRepository:                  f.Repository,
        fieldScanner:                     f.Scanner,
        fieldVulnerableDependencyID:      f.VulnerableDependency.ID,
        fieldVulnerableDependencyVersion: f.VulnerableDependency.Version,
        fieldDependencies:                encodeDependencyTable(f),
        fieldVulnerabilities:             encodeVulnerabilityTable(f.Vulnerabilities),
        fieldPatchVersions:               encodePatchMatrix(f),
        fieldProjects:                    encodeProjects(f.Projects),
        fieldRiskAssessor:                encodePersons(f.RiskAssessor),
        fieldRisk:                        encodeRisk(f.Risk),
        fieldPatchResponsible:            encodePersons(f.PatchResponsible),
        fieldDueDate:                     encodeDueDate(f.DueDate),
        fieldScore:                       encodeScore(f.Score),
        fieldLabels:                      fixLabels(f),
    }
}

func summaryFor(f domain.Finding) string {
    return fmt.Sprintf("[%s][%s] Vulnerability in %s %s",
        f.Repository, f.Scanner, f.VulnerableDependency.Name, f.VulnerableDependency.Version)
}

// The dependency table lists the vulnerable dependency first, then the
// first-level dependencies that pull it in.
func encodeDependencyTable(f domain.Finding) string {
    rows := make([][]string, 0, 1+len(f.FirstLevelDependencies))
    for _, d := range allDependencies(f) {
        rows = append(rows, []string{d.ID, d.Name, d.Version})
    }
    return wiki.EncodeTable(dependencyColumns, rows)
}

func encodeVulnerabilityTable(vulns []domain.Vulnerability) string {
    rows := make([][]string, 0, len(vulns))
    for _, v := range vulns {
        rows = append(rows, []string{v.ID, v.Name, v.Description, strconv.Itoa(v.Score)})
    }
    return wiki.EncodeTable(vulnerabilityColumns, rows)
}

// encodePatchMatrix renders the dependency x vulnerability fix-version
// matrix, restricted to dependencies that actually have a fix recorded.
// Returns nil when no dependency has one, leaving the field unset.
func encodePatchMatrix(f domain.Finding) any {
    columns := make([]string, 0, len(f.Vulnerabilities))
    for _, v := range f.Vulnerabilities { columns = append(columns, v.Name) }
    var rows []wiki.MatrixRow
    for _, d := range allDependencies(f) {
        if len(d.FixVersions) == 0 { continue }
        row := wiki.MatrixRow{Label: d.Name, Cells: make([][]string, len(f.Vulnerabilities))}
        for i, v := range f.Vulnerabilities { row.Cells[i] = d.FixVersions[v.ID] }
        rows = append(rows, row)
    }
    if len(rows) == 0 { return nil }
    return wiki.EncodeMatrix(patchMatrixCorner, columns, rows)
}

func encodeProjects(projects []string) any {
    if len(projects) == 0 { return nil }
    return wiki.EncodeBullets(projects)
}

// Only the account id is written back; display name and email are
// informational and owned by the identity directory.
func encodePersons(users []domain.User) any {
    if len(users) == 0 { return nil }
    out := make([]map[string]any, 0, len(users))
    for _, u := range users { out = append(out, map[string]any{"accountId": u.AccountID}) }
    return out
}

func encodeRisk(r domain.SecurityRisk) any {
    if r == "" { return nil }
    return map[string]any{"id": riskToOptionID[r]}
}

func encodeDueDate(epoch *int64) any {
    if epoch == nil { return nil }
    return time.Unix(*epoch, 0).UTC().Format(dueDateLayout)
}

func encodeScore(score int) any {
    if score == domain.ScoreUnset { return nil }
    return score
}

func fixLabels(f domain.Finding) []string {
    var labels []string
    vulnDepFixed := len(f.VulnerableDependency.FixVersions) > 0
    if vulnDepFixed { labels = append(labels, labelPatchVulnDepPublished) }
    allFixed := vulnDepFixed
    for _, d := range f.FirstLevelDependencies {
        if len(d.FixVersions) == 0 { allFixed = false; break }
    }
    if allFixed { labels = append(labels, labelPatchAllDepPublished) }
    return labels
}

func allDependencies(f domain.Finding) []domain.Dependency {
    return append([]domain.Dependency{f.VulnerableDependency}, f.FirstLevelDependencies...)
}

// decodeFinding rebuilds a finding from a stored issue. Optional fields
// decode to their empty values; a missing dependency table is an error
// because a finding without its vulnerable dependency has no identity.
func decodeFinding(issue tracker.Issue) (*domain.Finding, error) {
    f := &domain.Finding{
        Repository:  stringField(issue, fieldRepository),
        Scanner:     stringField(issue, fieldScanner),
        Score:       domain.ScoreUnset,
        JiraIssueID: issue.Key,
        MoreInfo:    issue.Permalink,
    }

    depBlob := stringField(issue, fieldDependencies)
    if strings.TrimSpace(depBlob) == "" {
        return nil, &FormatError{Field: "dependencies", Msg: "dependency table is missing"}
    }
    depRows, err := wiki.DecodeTable(depBlob, len(dependencyColumns))
    if err != nil { return nil, &FormatError{Field: "dependencies", Msg: err.Error()} }
    if len(depRows) == 0 {
        return nil, &FormatError{Field: "dependencies", Msg: "dependency table is empty"}
    }
    f.VulnerableDependency = domain.Dependency{ID: depRows[0][0], Name: depRows[0][1], Version: depRows[0][2]}
    for _, r := range depRows[1:] {
        f.FirstLevelDependencies = append(f.FirstLevelDependencies,
            domain.Dependency{ID: r[0], Name: r[1], Version: r[2]})
    }

    vulnRows, err := wiki.DecodeTable(stringField(issue, fieldVulnerabilities), len(vulnerabilityColumns))
    if err != nil { return nil, &FormatError{Field: "vulnerabilities", Msg: err.Error()} }
    for _, r := range vulnRows {
        score, err := strconv.Atoi(r[3])
        if err != nil {
            return nil, &FormatError{Field: "vulnerabilities", Msg: fmt.Sprintf("score %q is not a number", r[3])}
        }
        f.Vulnerabilities = append(f.Vulnerabilities,
            domain.Vulnerability{ID: r[0], Name: r[1], Description: r[2], Score: score})
    }

    if err := decodePatchMatrix(stringField(issue, fieldPatchVersions), f); err != nil { return nil, err }

    f.Projects = wiki.DecodeBullets(stringField(issue, fieldProjects))
    f.RiskAssessor = decodePersons(issue.Field(fieldRiskAssessor))
    f.PatchResponsible = decodePersons(issue.Field(fieldPatchResponsible))
    f.Risk = decodeRisk(issue.Field(fieldRisk))
    due, err := decodeDueDate(stringField(issue, fieldDueDate))
    if err != nil { return nil, err }
    f.DueDate = due
    f.Score = decodeScore(issue.Field(fieldScore))
    return f, nil
}

// decodePatchMatrix assigns fix versions back onto the decoded dependencies.
// Column headers carry vulnerability names (or ids, for hand-edited issues);
// row labels carry dependency names. Entries that reference nothing in the
// finding are dropped rather than failing the decode.
func decodePatchMatrix(blob string, f *domain.Finding) error {
    if strings.TrimSpace(blob) == "" { return nil }
    columns, rows, err := wiki.DecodeMatrix(blob)
    if err != nil { return &FormatError{Field: "patch_versions", Msg: err.Error()} }
    vulnID := make(map[string]string, 2*len(f.Vulnerabilities))
    for _, v := range f.Vulnerabilities {
        vulnID[v.Name] = v.ID
        vulnID[v.ID] = v.ID
    }
    for _, row := range rows {
        for i, versions := range row.Cells {
            if len(versions) == 0 { continue }
            id, ok := vulnID[columns[i]]
            if !ok { continue }
            addFixVersions(f, row.Label, id, versions)
        }
    }
    return nil
}

func addFixVersions(f *domain.Finding, depName, vulnID string, versions []string) {
    if f.VulnerableDependency.Name == depName {
        if f.VulnerableDependency.FixVersions == nil { f.VulnerableDependency.FixVersions = map[string][]string{} }
        f.VulnerableDependency.FixVersions[vulnID] = versions
    }
    for i := range f.FirstLevelDependencies {
        d := &f.FirstLevelDependencies[i]
        if d.Name != depName { continue }
        if d.FixVersions == nil { d.FixVersions = map[string][]string{} }
        d.FixVersions[vulnID] = versions
    }
}

// decodePersons accepts both the JSON shape the tracker API returns
// ([]any of maps) and the shape encodePersons writes ([]map).
func decodePersons(v any) []domain.User {
    var users []domain.User
    add := func(m map[string]any) {
        users = append(users, domain.User{
            AccountID:   stringValue(m["accountId"]),
            DisplayName: stringValue(m["displayName"]),
            Email:       stringValue(m["emailAddress"]),
        })
    }
    switch list := v.(type) {
    case []any:
        for _, it := range list {
            if m, ok := it.(map[string]any); ok { add(m) }
        }
    case []map[string]any:
        for _, m := range list { add(m) }
    }
    return users
}

func decodeRisk(v any) domain.SecurityRisk {
    m, ok := v.(map[string]any)
    if !ok { return "" }
    return optionIDToRisk[stringValue(m["id"])]
}

func decodeDueDate(s string) (*int64, error) {
    if s == "" { return nil, nil }
    t, err := time.ParseInLocation(dueDateLayout, s, time.UTC)
    if err != nil { return nil, &FormatError{Field: "due_date", Msg: err.Error()} }
    epoch := t.Unix()
    return &epoch, nil
}

func decodeScore(v any) int {
    switch s := v.(type) {
    case nil:
        return domain.ScoreUnset
    case int:
        return s
    case float64:
        return int(s)
    case string:
        n, err := strconv.Atoi(s)
        if err != nil { return domain.ScoreUnset }
        return n
    default:
        return domain.ScoreUnset
    }
}

func stringField(issue tracker.Issue, fieldID string) string {
    return stringValue(issue.Field(fieldID))
}

func stringValue(v any) string {
    s, _ := v.(string)
    return s
}
