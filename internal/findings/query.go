package findings

import (
    "fmt"
    "strings"
)

// Primary-key components are embedded in JQL between double quotes; a quote
// inside a component would change the query structure, so it is rejected
// before any network call.
func validatePrimaryKey(repository, scanner, depID, depVersion string) error {
    for _, v := range []string{repository, scanner, depID, depVersion} {
        if strings.Contains(v, `"`) {
            return &ValidationError{Msg: fmt.Sprintf("primary key component %s must not contain double quotes", v)}
        }
    }
    return nil
}

// openFindingQuery matches the one open finding issue for a primary key. The
// key fields are text fields, so matching is contains (~) on the quoted
// value; the project/issuetype clauses restrict the search to the finding
// board.
func openFindingQuery(repository, scanner, depID, depVersion string) string {
    return fmt.Sprintf(`project = "%s" and issuetype = "%s" and status != Done`+
        ` and cf[%s] ~ "%s" and cf[%s] ~ "%s" and cf[%s] ~ "%s" and cf[%s] ~ "%s"`,
        boardKey, findingIssueType,
        cfNum(fieldRepository), repository,
        cfNum(fieldScanner), scanner,
        cfNum(fieldVulnerableDependencyID), depID,
        cfNum(fieldVulnerableDependencyVersion), depVersion)
}

func cfNum(fieldID string) string { return strings.TrimPrefix(fieldID, "customfield_") }

func primaryKey(repository, scanner, depID, depVersion string) string {
    return fmt.Sprintf("(%s, %s, %s, %s)", repository, scanner, depID, depVersion)
}
