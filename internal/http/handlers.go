/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"
    "strings"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/HamedShams/vuln-pulse/internal/config"
    "github.com/HamedShams/vuln-pulse/internal/domain"
)

type service interface {
    IngestFindings(ctx context.Context, batch []domain.Finding) (domain.SyncRun, error)
    RunDailyDigest(ctx context.Context) error
    GetLastRun(ctx context.Context) (*domain.SyncRun, error)
}

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc any) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc.(service)}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

// IngestFindings takes a scanner batch and syncs it to the board. The call
// is synchronous: scanners gate their pipelines on the result.
func (h *Handlers) IngestFindings(c *gin.Context) {
    if !h.authorized(c) {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
        return
    }
    var batch []domain.Finding
    if err := c.ShouldBindJSON(&batch); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    run, err := h.svc.IngestFindings(c.Request.Context(), batch)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    status := http.StatusOK
    if run.Failed > 0 { status = http.StatusMultiStatus }
    c.JSON(status, gin.H{"received": run.Received, "synced": run.Synced, "failed": run.Failed})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    if lr == nil {
        c.JSON(http.StatusOK, gin.H{"runs": 0})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunDigestNow(c *gin.Context) {
    // Run in background detached from the HTTP request to avoid context cancellation
    go func(){ _ = h.svc.RunDailyDigest(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handlers) authorized(c *gin.Context) bool {
    if h.cfg.IngestToken == "" { return true }
    auth := c.GetHeader("Authorization")
    return strings.TrimPrefix(auth, "Bearer ") == h.cfg.IngestToken
}
