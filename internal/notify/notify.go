/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package notify

import (
    "context"
    "fmt"
    "time"

    "github.com/rs/zerolog"

    "github.com/HamedShams/vuln-pulse/internal/adapters/telegram"
    "github.com/HamedShams/vuln-pulse/internal/domain"
    "github.com/HamedShams/vuln-pulse/internal/repo"
)

// EventRecorder writes an audit row for every finding written to the board.
// Failures are logged and swallowed: the audit trail must never block a sync.
type EventRecorder struct {
    repo *repo.Repository
    log  zerolog.Logger
}

func NewEventRecorder(r *repo.Repository, log zerolog.Logger) *EventRecorder {
    return &EventRecorder{repo: r, log: log}
}

func (e *EventRecorder) OnFindingCreated(f domain.Finding) { e.record(domain.EventFindingCreated, f) }
func (e *EventRecorder) OnFindingUpdated(f domain.Finding) { e.record(domain.EventFindingUpdated, f) }

func (e *EventRecorder) record(kind string, f domain.Finding) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    ev := domain.FindingEvent{
        IssueKey:          f.JiraIssueID,
        Repository:        f.Repository,
        Scanner:           f.Scanner,
        DependencyID:      f.VulnerableDependency.ID,
        DependencyVersion: f.VulnerableDependency.Version,
        Kind:              kind,
        At:                time.Now().UTC(),
    }
    if err := e.repo.RecordFindingEvent(ctx, ev); err != nil {
        e.log.Error().Err(err).Str("issue", f.JiraIssueID).Str("kind", kind).Msg("notify: record event failed")
    }
}

// Announcer pushes newly opened findings to the security chats. Updates stay
// quiet, the daily digest covers them.
type Announcer struct {
    tg      *telegram.Client
    chatIDs []int64
    log     zerolog.Logger
}

func NewAnnouncer(tg *telegram.Client, chatIDs []int64, log zerolog.Logger) *Announcer {
    return &Announcer{tg: tg, chatIDs: chatIDs, log: log}
}

func (a *Announcer) OnFindingCreated(f domain.Finding) {
    text := fmt.Sprintf("New finding %s: %s %s in %s (%s)\n%s",
        f.JiraIssueID, f.VulnerableDependency.Name, f.VulnerableDependency.Version,
        f.Repository, f.Scanner, f.MoreInfo)
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    for _, id := range a.chatIDs {
        if err := a.tg.SendMessagePlain(ctx, id, text); err != nil {
            a.log.Error().Err(err).Int64("chat", id).Msg("notify: telegram send failed")
        }
    }
}

func (a *Announcer) OnFindingUpdated(domain.Finding) {}
