// Package analysis runs the full delivery pipeline over one clip and
// assembles the result document.
package analysis

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/actionlab/actionlab/internal/action"
	"github.com/actionlab/actionlab/internal/bands"
	"github.com/actionlab/actionlab/internal/basics"
	"github.com/actionlab/actionlab/internal/config"
	"github.com/actionlab/actionlab/internal/elbow"
	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/report"
	"github.com/actionlab/actionlab/internal/risk"
	"github.com/actionlab/actionlab/internal/telemetry"
)

// Schema tags every result document.
const Schema = "actionlab.analysis.v1"

// Input is one clip to analyze.
type Input struct {
	Frames []pose.Frame
	Hand   string
	FPS    float64
	// Meta is copied into the report envelope. Only non-identifying keys
	// reach the run span.
	Meta map[string]string
}

// InputInfo records how the input was normalized.
type InputInfo struct {
	Hand         pose.Hand `json:"hand"`
	HandKnown    bool      `json:"hand_known"`
	FPS          float64   `json:"fps"`
	FPSDefaulted bool      `json:"fps_defaulted"`
	FrameCount   int       `json:"frame_count"`
}

// Result is the full output of one run. Every field is always present.
type Result struct {
	Schema  string         `json:"schema"`
	RunID   string         `json:"run_id"`
	Input   InputInfo      `json:"input"`
	Events  events.Set     `json:"events"`
	Action  action.Result  `json:"action"`
	Elbow   elbow.Legality `json:"elbow"`
	Risks   []risk.Signal  `json:"risks"`
	Basics  basics.Report  `json:"basics"`
	Summary report.Summary `json:"summary"`
}

// Analyzer holds the stage components. It is safe for concurrent use; runs
// share only read-only configuration.
type Analyzer struct {
	defaultFPS float64
	detector   *events.Detector
	classifier *action.Classifier
	elbow      *elbow.Evaluator
	risks      *risk.Engine
	basics     *basics.Analyzer

	tel     *telemetry.Provider
	reports *report.Emitter
	log     *slog.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithTelemetry records spans and metrics through p.
func WithTelemetry(p *telemetry.Provider) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.tel = p
		}
	}
}

// WithReports emits one report event per run.
func WithReports(em *report.Emitter) Option {
	return func(a *Analyzer) { a.reports = em }
}

// New builds an analyzer from the analysis section of the configuration.
func New(cfg config.AnalysisConfig, opts ...Option) *Analyzer {
	fps := cfg.DefaultFPS
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		fps = 25
	}
	a := &Analyzer{
		defaultFPS: fps,
		detector:   events.NewDetector(cfg.Events),
		classifier: action.NewClassifier(cfg.Action),
		elbow:      elbow.NewEvaluator(cfg.Elbow),
		risks:      risk.NewEngine(cfg.Risk),
		basics:     basics.NewAnalyzer(cfg.Basics),
		tel:        telemetry.Noop(),
		log:        logging.New("analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs every stage in dependency order. It never fails: the worst
// case is a fully shaped result with near-zero confidence.
func (a *Analyzer) Analyze(ctx context.Context, in Input) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	res := Result{Schema: Schema, RunID: uuid.NewString()}

	res.Input = a.normalize(in)
	hand, fps, frames := res.Input.Hand, res.Input.FPS, in.Frames

	attrs := telemetry.SafeAttributes("actionlab.", map[string]any{
		"run_id":        res.RunID,
		"hand":          string(hand),
		"hand_known":    res.Input.HandKnown,
		"fps":           fps,
		"fps_defaulted": res.Input.FPSDefaulted,
		"frame_count":   res.Input.FrameCount,
	})
	attrs = append(attrs, telemetry.MetaAttributes("actionlab.", in.Meta)...)
	ctx, span := a.tel.Tracer().Start(ctx, "actionlab.analyze", trace.WithAttributes(attrs...))
	defer span.End()

	a.stage(ctx, "events", func() {
		res.Events = a.detector.Detect(frames, hand, fps)
	})
	a.stage(ctx, "action", func() {
		res.Action = a.classifier.Classify(frames, hand, res.Events)
	})
	a.stage(ctx, "elbow", func() {
		res.Elbow = a.elbow.Evaluate(frames, hand, fps, res.Events)
	})
	a.stage(ctx, "risk", func() {
		res.Risks = a.risks.Run(risk.Input{
			Frames:    frames,
			Events:    res.Events,
			FPS:       fps,
			Hand:      hand,
			HandKnown: res.Input.HandKnown,
			Action:    res.Action,
		})
	})
	a.stage(ctx, "bands", func() {
		for i := range res.Risks {
			d := bands.Deviate(string(res.Risks[i].ID), res.Risks[i].Strength, res.Risks[i].Confidence)
			res.Risks[i].Deviation = &d
		}
	})
	a.stage(ctx, "basics", func() {
		res.Basics = a.basics.Analyze(frames, hand, res.Events)
	})
	res.Summary = summarize(res)

	durMs := float64(time.Since(start).Microseconds()) / 1000
	span.SetAttributes(
		attribute.String("actionlab.elbow_verdict", string(res.Elbow.Verdict)),
		attribute.String("actionlab.action_type", res.Action.Type),
		attribute.String("actionlab.risk_level", res.Summary.RiskLevel),
	)
	a.tel.RecordRun(ctx, runStats(res, durMs))
	a.log.Info("analysis complete",
		"run_id", res.RunID,
		"frames", res.Input.FrameCount,
		"events", res.Summary.EventCount,
		"verdict", res.Elbow.Verdict,
		"action", res.Action.Type,
		"risk_level", res.Summary.RiskLevel,
		"duration_ms", durMs,
	)

	if a.reports != nil {
		a.reports.Emit(report.NewEvent(res.RunID, res.Summary, res, in.Meta))
	}
	return res
}

func (a *Analyzer) normalize(in Input) InputInfo {
	info := InputInfo{FPS: in.FPS, FrameCount: len(in.Frames)}
	info.Hand, info.HandKnown = pose.ParseHand(in.Hand)
	if in.FPS <= 0 || math.IsNaN(in.FPS) || math.IsInf(in.FPS, 0) {
		info.FPS = a.defaultFPS
		info.FPSDefaulted = true
		a.log.Warn("fps missing or invalid, using default", "fps", in.FPS, "default", a.defaultFPS)
	}
	if !info.HandKnown {
		a.log.Debug("bowling hand unknown, assuming right", "hand", in.Hand)
	}
	return info
}

func (a *Analyzer) stage(ctx context.Context, name string, fn func()) {
	_, span := a.tel.Tracer().Start(ctx, "actionlab.stage."+name)
	t := time.Now()
	fn()
	a.tel.RecordStage(ctx, name, float64(time.Since(t).Microseconds())/1000)
	span.End()
}

func runStats(res Result, durMs float64) telemetry.RunStats {
	s := telemetry.RunStats{
		Verdict:    string(res.Elbow.Verdict),
		ActionType: res.Action.Type,
		RiskLevel:  res.Summary.RiskLevel,
		DurationMs: durMs,
		Events:     make(map[string]string, 4),
		Risks:      make(map[string]float64, len(res.Risks)),
	}
	for _, e := range []*events.Event{res.Events.Release, res.Events.UAH, res.Events.FFC, res.Events.BFC} {
		if e != nil {
			s.Events[string(e.Kind)] = e.Method
		}
	}
	for _, r := range res.Risks {
		s.Risks[string(r.ID)] = r.Strength
	}
	return s
}
