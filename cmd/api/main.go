/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/HamedShams/vuln-pulse/internal/adapters/jira"
    "github.com/HamedShams/vuln-pulse/internal/adapters/openai"
    "github.com/HamedShams/vuln-pulse/internal/adapters/telegram"
    "github.com/HamedShams/vuln-pulse/internal/config"
    "github.com/HamedShams/vuln-pulse/internal/findings"
    httpapi "github.com/HamedShams/vuln-pulse/internal/http"
    "github.com/HamedShams/vuln-pulse/internal/jobs"
    "github.com/HamedShams/vuln-pulse/internal/logger"
    "github.com/HamedShams/vuln-pulse/internal/notify"
    "github.com/HamedShams/vuln-pulse/internal/repo"
    "github.com/HamedShams/vuln-pulse/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB
    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()
    repository := repo.NewRepository(db, log)

    // Adapters
    jc := jira.NewClient(cfg, log)
    llm := openai.NewClient(cfg, log)
    tg := telegram.NewClient(cfg, log)

    // Finding source with its write subscribers
    subscribers := []findings.Subscriber{
        notify.NewEventRecorder(repository, log),
        notify.NewAnnouncer(tg, cfg.TelegramChatIDs, log),
    }
    source := findings.NewSource(jc, subscribers, log)

    svc := services.New(cfg, log, source, repository, llm, tg)

    // Cron
    cron := jobs.NewCron(cfg, log, svc, repository)
    cron.Start()
    defer cron.Stop()

    // HTTP server (Gin)
    router := httpapi.NewRouter(cfg, log, svc)

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
