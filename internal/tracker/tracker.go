package tracker

import "context"

// Issue is one record in the external tracker, reduced to what the sync layer
// needs: identity, a browse link and the raw field map as the tracker's API
// returned it (strings, numbers, []any person lists, map[string]any options).
type Issue struct {
    ID        string
    Key       string
    Permalink string
    Fields    map[string]any
}

// Field returns the raw value of a field, or nil when absent.
func (i Issue) Field(id string) any { return i.Fields[id] }

type Comment struct {
    Body string
}

// Client is the tracker collaborator contract. Implementations own transport,
// auth and retry behavior; callers treat every method as a blocking round
// trip. The zero-result case of SearchIssues is an empty slice, not an error.
type Client interface {
    SearchIssues(ctx context.Context, jql string) ([]Issue, error)
    CreateIssue(ctx context.Context, fields map[string]any) (Issue, error)
    UpdateIssue(ctx context.Context, id string, fields map[string]any) error
    Issue(ctx context.Context, key string) (Issue, error)
    Comments(ctx context.Context, key string) ([]Comment, error)
}
