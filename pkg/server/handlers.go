package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/manager"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
	"mercator-hq/gatekeep/pkg/rules/store"
	"mercator-hq/gatekeep/pkg/rules/validator"
	"mercator-hq/gatekeep/pkg/telemetry/logging"
	"mercator-hq/gatekeep/pkg/telemetry/tracing"
)

const (
	defaultVersionsLimit = 20
	maxVersionsLimit     = 500
)

// EvaluateRequest is the body of /v1/evaluate and /v1/explain. When Rules
// is absent the active configuration is used.
type EvaluateRequest struct {
	Record *record.Record  `json:"record"`
	Rules  json.RawMessage `json:"rules,omitempty"`
}

// EvaluateResponse is the outcome of one pass.
type EvaluateResponse struct {
	Errors         []engine.RuleError `json:"errors"`
	RulesEvaluated int                `json:"rules_evaluated"`
	ElapsedMicros  int64              `json:"elapsed_us"`
	RulesVersion   string             `json:"rules_version"`
}

// ExplainResponse adds per-rule traces to an EvaluateResponse.
type ExplainResponse struct {
	EvaluateResponse
	Rules []engine.RuleTrace `json:"rules"`
}

// RulesResponse describes the active configuration.
type RulesResponse struct {
	Version  string            `json:"version"`
	Checksum string            `json:"checksum"`
	Revision string            `json:"revision"`
	Source   string            `json:"source"`
	Format   string            `json:"format"`
	LoadedAt time.Time         `json:"loaded_at"`
	StoreID  string            `json:"store_id,omitempty"`
	Stats    manager.Stats     `json:"stats"`
	Warnings []validator.Issue `json:"warnings,omitempty"`
	Reloads  int64             `json:"reloads"`
	Failures int64             `json:"failures"`
	LastErr  string            `json:"last_error,omitempty"`
}

// VersionsResponse lists stored versions, newest first.
type VersionsResponse struct {
	Versions []store.Version `json:"versions"`
}

// PatternsResponse lists the preset patterns.
type PatternsResponse struct {
	Patterns []patterns.Preset `json:"patterns"`
}

// evaluation is a decoded request resolved against its configuration.
type evaluation struct {
	cfg     *ast.RulesConfig
	rec     *record.Record
	version string
}

// resolve decodes the request and picks the configuration. It writes the
// error response itself and returns nil on failure.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) *evaluation {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		decodeError(w, err)
		return nil
	}

	var req EvaluateRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		decodeError(w, err)
		return nil
	}
	if req.Record == nil {
		respondError(w, http.StatusBadRequest, CodeInvalidJSON, "record is required", nil)
		return nil
	}

	if len(req.Rules) > 0 && string(req.Rules) != "null" {
		cfg, err := ast.ParseJSON(req.Rules)
		if err != nil {
			respondError(w, http.StatusBadRequest, CodeInvalidRules, err.Error(), nil)
			return nil
		}
		if s.deps.Validator != nil {
			if report := s.deps.Validator.Validate(cfg); report.HasErrors() {
				respondError(w, http.StatusUnprocessableEntity, CodeInvalidRules,
					"inline rules failed validation", report.Errors())
				return nil
			}
		}
		return &evaluation{cfg: cfg, rec: req.Record, version: cfg.Version}
	}

	snap := s.deps.Manager.Current()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, CodeNoRules, "no active rules configuration", nil)
		return nil
	}
	return &evaluation{cfg: snap.Config, rec: req.Record, version: snap.Version()}
}

func newEvaluateResponse(result engine.EvaluationResult, version string) EvaluateResponse {
	return EvaluateResponse{
		Errors:         result.Errors,
		RulesEvaluated: result.RulesEvaluated,
		ElapsedMicros:  result.Elapsed.Microseconds(),
		RulesVersion:   version,
	}
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ev := s.resolve(w, r)
	if ev == nil {
		return
	}

	ctx, span := s.deps.Telemetry.Tracer().Start(r.Context(), "rules.evaluate")
	defer span.End()
	ctx = logging.WithRulesVersion(ctx, ev.version)

	result := s.deps.Evaluator.EvaluateRules(ev.cfg, ev.rec)
	tracing.SetEvaluationAttributes(span, ev.version, result)

	s.deps.Telemetry.Logger().DebugContext(ctx, "record evaluated",
		"rules_evaluated", result.RulesEvaluated,
		"errors", len(result.Errors),
	)
	respondJSON(w, http.StatusOK, newEvaluateResponse(result, ev.version))
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ev := s.resolve(w, r)
	if ev == nil {
		return
	}

	_, span := s.deps.Telemetry.Tracer().Start(r.Context(), "rules.explain")
	defer span.End()

	exp := s.deps.Evaluator.Explain(ev.cfg, ev.rec)
	tracing.SetEvaluationAttributes(span, ev.version, exp.Result)

	traces := exp.Rules
	if traces == nil {
		traces = []engine.RuleTrace{}
	}
	respondJSON(w, http.StatusOK, ExplainResponse{
		EvaluateResponse: newEvaluateResponse(exp.Result, ev.version),
		Rules:            traces,
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	status := s.deps.Manager.Status()
	if status.Active == nil {
		respondError(w, http.StatusServiceUnavailable, CodeNoRules, "no active rules configuration", lastError(status))
		return
	}
	respondJSON(w, http.StatusOK, newRulesResponse(status.Active, status))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Manager.Reload(r.Context())
	if err != nil {
		reloadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRulesResponse(snap, s.deps.Manager.Status()))
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	limit := defaultVersionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, CodeInvalidJSON, "limit must be a positive integer", nil)
			return
		}
		limit = min(n, maxVersionsLimit)
	}

	versions, err := s.deps.Manager.Versions(r.Context(), limit)
	if err != nil {
		if errors.Is(err, manager.ErrStoreDisabled) {
			respondError(w, http.StatusNotFound, CodeStoreDisabled, err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeInternal, err.Error(), nil)
		return
	}
	if versions == nil {
		versions = []store.Version{}
	}
	respondJSON(w, http.StatusOK, VersionsResponse{Versions: versions})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.deps.Manager.Rollback(r.Context(), id)
	if err != nil {
		reloadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newRulesResponse(snap, s.deps.Manager.Status()))
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PatternsResponse{Patterns: s.deps.Evaluator.Patterns().Presets()})
}

// reloadError maps manager failures to responses.
func reloadError(w http.ResponseWriter, err error) {
	if errors.Is(err, manager.ErrStoreDisabled) {
		respondError(w, http.StatusNotFound, CodeStoreDisabled, err.Error(), nil)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
		return
	}

	var rerr *manager.ReloadError
	if errors.As(err, &rerr) && rerr.Stage == manager.StageValidate && rerr.Report != nil {
		respondError(w, http.StatusUnprocessableEntity, CodeInvalidRules, err.Error(), rerr.Report.Issues)
		return
	}
	respondError(w, http.StatusInternalServerError, CodeReloadFailed, err.Error(), nil)
}

func newRulesResponse(snap *manager.Snapshot, status manager.Status) RulesResponse {
	resp := RulesResponse{
		Version:  snap.Version(),
		Checksum: snap.Checksum,
		Revision: snap.Revision,
		Source:   snap.Source,
		Format:   string(snap.Format),
		LoadedAt: snap.LoadedAt,
		StoreID:  snap.StoreID,
		Stats:    snap.Stats(),
		Warnings: snap.Warnings,
		Reloads:  status.Reloads,
		Failures: status.Failures,
	}
	if status.LastError != nil {
		resp.LastErr = status.LastError.Error()
	}
	return resp
}

func lastError(status manager.Status) any {
	if status.LastError == nil {
		return nil
	}
	return map[string]string{"last_error": status.LastError.Error()}
}
