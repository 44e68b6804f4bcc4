package findings

import "github.com/HamedShams/vuln-pulse/internal/domain"

// Jira coordinates of the finding board. Custom field and option ids are
// instance specific; keeping them as compile-time constants gives every
// access a type-checked name instead of a runtime lookup by field title.

const (
    boardKey         = "PSEC"
    findingIssueType = "Bug"

    // Fixed tickets used outside the finding lifecycle: the rotating
    // risk-assessor assignment and the two commit-exception threads.
    currentRiskAssessorTicket       = "PSEC-1"
    mergeRequestExceptionTicket     = "PSEC-2"
    releaseCandidateExceptionTicket = "PSEC-3"

    labelPatchVulnDepPublished = "patch_vulndep_published"
    labelPatchAllDepPublished  = "patch_alldep_published"
)

const (
    fieldRepository                  = "customfield_10401"
    fieldScanner                     = "customfield_10402"
    fieldVulnerableDependencyID      = "customfield_10403"
    fieldVulnerableDependencyVersion = "customfield_10404"
    fieldDependencies                = "customfield_10405"
    fieldVulnerabilities             = "customfield_10406"
    fieldPatchVersions               = "customfield_10407"
    fieldProjects                    = "customfield_10408"
    fieldRiskAssessor                = "customfield_10409"
    fieldRisk                        = "customfield_10410"
    fieldPatchResponsible            = "customfield_10411"
    fieldDueDate                     = "customfield_10412"
    fieldScore                       = "customfield_10413"

    fieldSummary   = "summary"
    fieldLabels    = "labels"
    fieldProject   = "project"
    fieldIssueType = "issuetype"
)

var riskToOptionID = map[domain.SecurityRisk]string{
    domain.RiskInformational: "10420",
    domain.RiskLow:           "10421",
    domain.RiskMedium:        "10422",
    domain.RiskHigh:          "10423",
    domain.RiskCritical:      "10424",
}

var optionIDToRisk = func() map[string]domain.SecurityRisk {
    m := make(map[string]domain.SecurityRisk, len(riskToOptionID))
    for r, id := range riskToOptionID { m[id] = r }
    return m
}()
