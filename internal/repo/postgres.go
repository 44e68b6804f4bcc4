/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"

    "github.com/HamedShams/vuln-pulse/internal/config"
    "github.com/HamedShams/vuln-pulse/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Repository is the audit store: sync runs and finding events. The board
// itself stays the source of truth for finding content.
type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

func (r *Repository) InsertSyncRun(ctx context.Context, run domain.SyncRun) (int64, error) {
    const q = `
        INSERT INTO sync_runs(started_at, finished_at, received, synced, failed)
        VALUES($1,$2,$3,$4,$5)
        RETURNING id`
    var id int64
    row := r.db.Pool.QueryRow(ctx, q, run.StartedAt, run.FinishedAt, run.Received, run.Synced, run.Failed)
    if err := row.Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) LastSyncRun(ctx context.Context) (*domain.SyncRun, error) {
    const q = `
        SELECT id, started_at, finished_at, received, synced, failed
        FROM sync_runs ORDER BY finished_at DESC LIMIT 1`
    var run domain.SyncRun
    err := r.db.Pool.QueryRow(ctx, q).Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
        &run.Received, &run.Synced, &run.Failed)
    if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
    if err != nil { return nil, err }
    return &run, nil
}

func (r *Repository) RecordFindingEvent(ctx context.Context, ev domain.FindingEvent) error {
    const q = `
        INSERT INTO finding_events(issue_key, repository, scanner, dependency_id, dependency_version, kind, at)
        VALUES($1,$2,$3,$4,$5,$6,$7)`
    _, err := r.db.Pool.Exec(ctx, q, ev.IssueKey, ev.Repository, ev.Scanner,
        ev.DependencyID, ev.DependencyVersion, ev.Kind, ev.At)
    return err
}

func (r *Repository) EventsSince(ctx context.Context, since time.Time) ([]domain.FindingEvent, error) {
    const q = `
        SELECT id, issue_key, repository, scanner, dependency_id, dependency_version, kind, at
        FROM finding_events WHERE at >= $1 ORDER BY at`
    rows, err := r.db.Pool.Query(ctx, q, since)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []domain.FindingEvent
    for rows.Next() {
        var ev domain.FindingEvent
        if err := rows.Scan(&ev.ID, &ev.IssueKey, &ev.Repository, &ev.Scanner,
            &ev.DependencyID, &ev.DependencyVersion, &ev.Kind, &ev.At); err != nil { return nil, err }
        out = append(out, ev)
    }
    return out, rows.Err()
}

func (r *Repository) EventCountsSince(ctx context.Context, since time.Time) (map[string]int, error) {
    const q = `SELECT kind, count(*) FROM finding_events WHERE at >= $1 GROUP BY kind`
    rows, err := r.db.Pool.Query(ctx, q, since)
    if err != nil { return nil, err }
    defer rows.Close()
    out := map[string]int{}
    for rows.Next() {
        var kind string
        var n int
        if err := rows.Scan(&kind, &n); err != nil { return nil, err }
        out[kind] = n
    }
    return out, rows.Err()
}
