package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/actionlab/actionlab/internal/report"
)

func TestHandlerAcceptsReports(t *testing.T) {
	var logs bytes.Buffer
	h := newHandler(slog.New(slog.NewTextHandler(&logs, nil)), false)

	ev := report.NewEvent("run-9", report.Summary{RiskLevel: "moderate", ElbowVerdict: "LEGAL"}, map[string]any{}, nil)
	body, _ := json.Marshal(ev)
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(out), `"ok"`) {
		t.Fatalf("body = %s", out)
	}
	if !strings.Contains(logs.String(), "run_id=run-9") || !strings.Contains(logs.String(), "risk_level=moderate") {
		t.Fatalf("log missing report fields: %s", logs.String())
	}
}

func TestHandlerRejectsBadInput(t *testing.T) {
	h := newHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", rec.Code)
	}
}
