package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/sleuth/pkg/controller/http"
	"github.com/secmon-lab/sleuth/pkg/repository/memory"
	"github.com/secmon-lab/sleuth/pkg/service/metrics"
	"github.com/secmon-lab/sleuth/pkg/usecase"
)

func TestServer_Health(t *testing.T) {
	server := httpctrl.New()

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal(`{"status":"ok"}`)
}

func TestServer_Metrics(t *testing.T) {
	m := metrics.New()
	m.ObserveCommand("ping")
	server := httpctrl.New(httpctrl.WithMetrics(m.Handler()))

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	body, err := io.ReadAll(rec.Body)
	gt.NoError(t, err).Required()
	gt.String(t, string(body)).Contains(`sleuth_commands_total{keyword="ping"} 1`)
}

func TestServer_Routes(t *testing.T) {
	t.Run("slack routes are absent without handlers", func(t *testing.T) {
		server := httpctrl.New()

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hooks/slack/event", nil))
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("metrics is absent when not configured", func(t *testing.T) {
		server := httpctrl.New()

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("event route verifies signatures", func(t *testing.T) {
		uc := usecase.New(memory.New())
		server := httpctrl.New(
			httpctrl.WithSlackWebhook(httpctrl.NewSlackWebhookHandler(uc.Slack)),
			httpctrl.WithSlackSigningSecret("secret"),
		)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hooks/slack/event", nil))
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}
