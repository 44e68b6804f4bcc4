package findings

import (
    "context"
    "fmt"
    "regexp"
    "strings"

    "github.com/HamedShams/vuln-pulse/internal/domain"
    "github.com/HamedShams/vuln-pulse/internal/tracker"
)

// memTracker is an in-memory tracker.Client. Finding issues live in a map
// keyed by "repo-scanner-depid-depversion", derived from the quoted values
// of the search query, so every test gets its own isolated board.
type memTracker struct {
    issues   map[string]map[string]any
    tickets  map[string]map[string]any
    comments map[string][]tracker.Comment

    searches int
    creates  int
    updates  int

    // forcedSearch overrides the key lookup to simulate board states the
    // writer never produces (duplicates, mislabeled issues).
    forcedSearch []tracker.Issue
}

func newMemTracker() *memTracker {
    return &memTracker{
        issues:   map[string]map[string]any{},
        tickets:  map[string]map[string]any{},
        comments: map[string][]tracker.Comment{},
    }
}

var quotedTerm = regexp.MustCompile(`~\s*"([^"]+)"`)

func (m *memTracker) SearchIssues(_ context.Context, jql string) ([]tracker.Issue, error) {
    m.searches++
    if m.forcedSearch != nil { return m.forcedSearch, nil }
    terms := quotedTerm.FindAllStringSubmatch(jql, -1)
    if len(terms) != 4 {
        return nil, fmt.Errorf("unexpected query shape: %s", jql)
    }
    parts := make([]string, 0, 4)
    for _, t := range terms { parts = append(parts, t[1]) }
    key := strings.Join(parts, "-")
    fields, ok := m.issues[key]
    if !ok { return nil, nil }
    return []tracker.Issue{m.issue(key, fields)}, nil
}

func (m *memTracker) CreateIssue(_ context.Context, fields map[string]any) (tracker.Issue, error) {
    m.creates++
    key := fmt.Sprintf("%s-%s-%s-%s",
        fields[fieldRepository], fields[fieldScanner],
        fields[fieldVulnerableDependencyID], fields[fieldVulnerableDependencyVersion])
    stored := make(map[string]any, len(fields))
    for k, v := range fields { stored[k] = v }
    m.issues[key] = stored
    return m.issue(key, stored), nil
}

func (m *memTracker) UpdateIssue(_ context.Context, id string, fields map[string]any) error {
    m.updates++
    stored, ok := m.issues[id]
    if !ok { return fmt.Errorf("no issue %s", id) }
    for k, v := range fields { stored[k] = v }
    return nil
}

func (m *memTracker) Issue(_ context.Context, key string) (tracker.Issue, error) {
    fields, ok := m.tickets[key]
    if !ok { return tracker.Issue{}, fmt.Errorf("no ticket %s", key) }
    return m.issue(key, fields), nil
}

func (m *memTracker) Comments(_ context.Context, key string) ([]tracker.Comment, error) {
    return m.comments[key], nil
}

func (m *memTracker) issue(key string, fields map[string]any) tracker.Issue {
    return tracker.Issue{
        ID:        key,
        Key:       key,
        Permalink: "https://tracker.example.com/browse/" + key,
        Fields:    fields,
    }
}

// recordingSubscriber counts notifications and keeps the finding snapshots
// it was handed.
type recordingSubscriber struct {
    created []domain.Finding
    updated []domain.Finding
}

func (r *recordingSubscriber) OnFindingCreated(f domain.Finding) { r.created = append(r.created, f) }
func (r *recordingSubscriber) OnFindingUpdated(f domain.Finding) { r.updated = append(r.updated, f) }
