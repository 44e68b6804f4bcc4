/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "github.com/HamedShams/vuln-pulse/internal/adapters/openai"
    "github.com/HamedShams/vuln-pulse/internal/adapters/telegram"
    "github.com/HamedShams/vuln-pulse/internal/config"
    "github.com/HamedShams/vuln-pulse/internal/domain"
    "github.com/HamedShams/vuln-pulse/internal/findings"
    "github.com/HamedShams/vuln-pulse/internal/repo"
)

// Service ties the scanner-facing ingest API to the finding source and the
// audit store, and produces the daily digest.
type Service struct {
    cfg    config.Config
    log    zerolog.Logger
    source *findings.Source
    repo   *repo.Repository
    llm    *openai.Client
    tg     *telegram.Client
}

func New(cfg config.Config, log zerolog.Logger, source *findings.Source, r *repo.Repository,
    llm *openai.Client, tg *telegram.Client) *Service {
    return &Service{cfg: cfg, log: log, source: source, repo: r, llm: llm, tg: tg}
}

// IngestFindings reconciles a scanner batch against the board. Findings are
// isolated from each other: one bad row is counted and logged, the rest of
// the batch still syncs. The returned run is also persisted.
func (s *Service) IngestFindings(ctx context.Context, batch []domain.Finding) (domain.SyncRun, error) {
    run := domain.SyncRun{StartedAt: time.Now().UTC(), Received: len(batch)}
    for i := range batch {
        f := &batch[i]
        if err := s.source.CreateOrUpdateOpenFinding(ctx, f); err != nil {
            run.Failed++
            s.log.Error().Err(err).
                Str("repo", f.Repository).Str("scanner", f.Scanner).
                Str("dep", f.VulnerableDependency.ID).Str("version", f.VulnerableDependency.Version).
                Msg("ingest: finding sync failed")
            continue
        }
        run.Synced++
    }
    run.FinishedAt = time.Now().UTC()
    id, err := s.repo.InsertSyncRun(ctx, run)
    if err != nil {
        // the board writes already happened, losing the run row is not fatal
        s.log.Error().Err(err).Msg("ingest: persist sync run failed")
        return run, nil
    }
    run.ID = id
    return run, nil
}

func (s *Service) GetLastRun(ctx context.Context) (*domain.SyncRun, error) {
    return s.repo.LastSyncRun(ctx)
}

// RunDailyDigest summarizes the last day of finding events into the security
// chats. The LLM writes the prose; when it is unavailable the digest falls
// back to plain counters rather than staying silent.
func (s *Service) RunDailyDigest(ctx context.Context) error {
    since := time.Now().UTC().Add(-24 * time.Hour)
    stats, err := s.repo.EventCountsSince(ctx, since)
    if err != nil { return fmt.Errorf("digest: load counters: %w", err) }
    if stats[domain.EventFindingCreated] == 0 && stats[domain.EventFindingUpdated] == 0 {
        s.log.Info().Msg("digest: no finding activity, skipping")
        return nil
    }
    events, err := s.repo.EventsSince(ctx, since)
    if err != nil { return fmt.Errorf("digest: load events: %w", err) }

    text, err := s.llm.Summarize(ctx, stats, digestRows(events))
    if err != nil {
        s.log.Warn().Err(err).Msg("digest: summarizer unavailable, using plain digest")
        text = plainDigest(stats, events)
    }

    var lastErr error
    for _, id := range s.cfg.TelegramChatIDs {
        if err := s.tg.SendMessagePlain(ctx, id, text); err != nil {
            s.log.Error().Err(err).Int64("chat", id).Msg("digest: telegram send failed")
            lastErr = err
        }
    }
    return lastErr
}

func digestRows(events []domain.FindingEvent) []map[string]any {
    rows := make([]map[string]any, 0, len(events))
    for _, ev := range events {
        rows = append(rows, map[string]any{
            "issue":      ev.IssueKey,
            "repository": ev.Repository,
            "scanner":    ev.Scanner,
            "dependency": ev.DependencyID,
            "version":    ev.DependencyVersion,
            "kind":       ev.Kind,
        })
    }
    return rows
}

func plainDigest(stats map[string]int, events []domain.FindingEvent) string {
    var b strings.Builder
    fmt.Fprintf(&b, "Vulnerability findings, last 24h: %d new, %d updated\n",
        stats[domain.EventFindingCreated], stats[domain.EventFindingUpdated])
    for _, ev := range events {
        if ev.Kind != domain.EventFindingCreated { continue }
        fmt.Fprintf(&b, "- %s: %s %s (%s)\n", ev.IssueKey, ev.DependencyID, ev.DependencyVersion, ev.Repository)
    }
    return strings.TrimRight(b.String(), "\n")
}
