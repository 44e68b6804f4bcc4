package domain

import "time"

const (
    EventFindingCreated = "created"
    EventFindingUpdated = "updated"
)

// FindingEvent is one audit row: a finding was created or updated on the
// board at a point in time.
type FindingEvent struct {
    ID                int64
    IssueKey          string
    Repository        string
    Scanner           string
    DependencyID      string
    DependencyVersion string
    Kind              string
    At                time.Time
}

// SyncRun summarizes one ingest batch.
type SyncRun struct {
    ID         int64
    StartedAt  time.Time
    FinishedAt time.Time
    Received   int
    Synced     int
    Failed     int
}
