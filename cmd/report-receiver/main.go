// report-receiver is a development endpoint for webhook report sinks. It
// logs every report it receives and answers 200.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/report"
)

func main() {
	addr := flag.String("addr", ":8099", "listen address for report receiver")
	verbose := flag.Bool("v", false, "log full report bodies")
	flag.Parse()

	logging.Init(slog.LevelInfo, "text")
	log := logging.New("report-receiver")

	mux := http.NewServeMux()
	mux.Handle("/", newHandler(log, *verbose))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("report receiver listening; POST JSON to /reports", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("receiver error", "err", err)
		os.Exit(1)
	}
}

func newHandler(log *slog.Logger, verbose bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
		_ = r.Body.Close()
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}

		var ev report.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			log.Warn("undecodable report", "path", r.URL.Path, "len", len(body), "err", err)
			http.Error(w, "invalid report", http.StatusBadRequest)
			return
		}
		log.Info("received report",
			"run_id", ev.RunID,
			"version", ev.Version,
			"risk_level", ev.Summary.RiskLevel,
			"dominant_region", ev.Summary.DominantRegion,
			"elbow", ev.Summary.ElbowVerdict,
			"action", ev.Summary.ActionType,
		)
		if verbose {
			log.Info("report body", "run_id", ev.RunID, "body", string(body))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, `{"status":"ok"}`)
	}
}
