package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-production/internal/metrics"
	"github.com/iliyamo/theatre-production/internal/queue"
	"github.com/iliyamo/theatre-production/internal/webhook"
)

// SignatureHeader carries "<algo>=<hex>".
const SignatureHeader = "X-Hub-Signature"

// Puller updates the deployed working tree.  *webhook.Puller satisfies
// it.
type Puller interface {
	Pull(ctx context.Context) (string, error)
	Dir() string
	Remote() string
	Branch() string
}

// DeployPublisher announces a finished pull.
type DeployPublisher interface {
	PublishDeploymentPulled(ctx context.Context, ev queue.DeploymentPulledEvent) error
}

// WebhookHandler serves POST /update_server.
type WebhookHandler struct {
	Verifier  *webhook.Verifier
	Puller    Puller
	Publisher DeployPublisher // optional
	Secret    []byte
	MaxBody   int64
	Log       *slog.Logger
}

// UpdateServer verifies the signature over the raw body and, when it
// matches, pulls the working tree.  Anything that cannot be verified,
// including a body over MaxBody, is a terminal 401.
func (h *WebhookHandler) UpdateServer(c echo.Context) error {
	logger := h.Log
	if logger == nil {
		logger = slog.Default()
	}
	limit := h.MaxBody
	if limit <= 0 {
		limit = 1 << 20
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, limit+1))
	if err != nil {
		return c.String(http.StatusBadRequest, "Unreadable body")
	}
	if int64(len(body)) > limit {
		metrics.WebhookVerifications.WithLabelValues("oversized").Inc()
		logger.Warn("webhook body over limit", "remote_ip", c.RealIP(), "limit", limit)
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}

	algo, err := h.Verifier.Verify(c.Request().Header.Get(SignatureHeader), body, h.Secret)
	if err != nil {
		result := "invalid"
		if errors.Is(err, webhook.ErrUnsupportedAlgorithm) {
			result = "unsupported"
		}
		metrics.WebhookVerifications.WithLabelValues(result).Inc()
		logger.Warn("webhook signature rejected", "remote_ip", c.RealIP(), "error", err)
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}
	metrics.WebhookVerifications.WithLabelValues("ok").Inc()

	out, err := h.Puller.Pull(c.Request().Context())
	if err != nil {
		logger.Error("git pull failed", "repo_dir", h.Puller.Dir(), "remote", h.Puller.Remote(), "error", err)
		return c.String(http.StatusInternalServerError, "Update failed")
	}
	logger.Info("git pull complete",
		"repo_dir", h.Puller.Dir(),
		"remote", h.Puller.Remote(),
		"branch", h.Puller.Branch(),
		"algorithm", algo,
		"output", out,
	)

	if h.Publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = h.Publisher.PublishDeploymentPulled(ctx, queue.DeploymentPulledEvent{
			RepoDir:   h.Puller.Dir(),
			Remote:    h.Puller.Remote(),
			Branch:    h.Puller.Branch(),
			Algorithm: algo,
			Output:    out,
			PulledAt:  time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.String(http.StatusOK, "Updated successfully")
}
