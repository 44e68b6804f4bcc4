package domain

// SecurityRisk is the assessed risk of a finding. The empty string means the
// finding has not been risk-assessed yet.
type SecurityRisk string

const (
    RiskInformational SecurityRisk = "INFORMATIONAL"
    RiskLow           SecurityRisk = "LOW"
    RiskMedium        SecurityRisk = "MEDIUM"
    RiskHigh          SecurityRisk = "HIGH"
    RiskCritical      SecurityRisk = "CRITICAL"
)

// ScoreUnset marks a finding or vulnerability that has not been rated.
const ScoreUnset = -1

type CommitType int

const (
    MergeCommit CommitType = iota
    ReleaseCommit
)

type User struct {
    AccountID   string `json:"account_id"`
    DisplayName string `json:"display_name,omitempty"`
    Email       string `json:"email,omitempty"`
}

type Vulnerability struct {
    ID          string `json:"id"`
    Name        string `json:"name"`
    Description string `json:"description"`
    Score       int    `json:"score"`
}

type Dependency struct {
    ID      string `json:"id"`
    Name    string `json:"name"`
    Version string `json:"version"`
    // FixVersions maps a vulnerability id to the ordered list of versions of
    // this dependency that fix it.
    FixVersions map[string][]string `json:"fix_versions,omitempty"`
}

// Finding is one vulnerable dependency in one repository as reported by one
// scanner. (Repository, Scanner, VulnerableDependency.ID,
// VulnerableDependency.Version) is its primary key and must be unique among
// open findings.
type Finding struct {
    Repository             string          `json:"repository"`
    Scanner                string          `json:"scanner"`
    VulnerableDependency   Dependency      `json:"vulnerable_dependency"`
    Vulnerabilities        []Vulnerability `json:"vulnerabilities"`
    FirstLevelDependencies []Dependency    `json:"first_level_dependencies,omitempty"`
    Projects               []string        `json:"projects,omitempty"`
    RiskAssessor           []User          `json:"risk_assessor,omitempty"`
    Risk                   SecurityRisk    `json:"risk,omitempty"`
    PatchResponsible       []User          `json:"patch_responsible,omitempty"`
    DueDate                *int64          `json:"due_date,omitempty"` // epoch seconds, nil until agreed
    Score                  int             `json:"score"`

    // Assigned on first creation in the tracker.
    JiraIssueID string `json:"jira_issue_id,omitempty"`
    MoreInfo    string `json:"more_info,omitempty"`
}
