package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/manager"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/store"
	"mercator-hq/gatekeep/pkg/rules/validator"
	"mercator-hq/gatekeep/pkg/telemetry"
)

func rulesYAML(version string, threshold int) string {
	return fmt.Sprintf(`version: %q
rules:
  - id: high-total
    name: High total
    error_message: Order total exceeds limit
    conditions:
      operator: AND
      criteria:
        - field: cart.total
          operator: GREATER_THAN
          value: %d
  - id: po-box
    name: PO box
    error_message: We cannot ship to PO boxes
    conditions:
      operator: OR
      criteria:
        - field: shipping_address.address1
          operator: REGEX_MATCH
          value: po_box
          is_preset: true
`, version, threshold)
}

const invalidYAML = `version: "broken"
rules:
  - id: bad
    error_message: nope
    conditions:
      operator: AND
      criteria:
        - field: cart.bogus
          operator: EQUALS
          value: 1
`

type testEnv struct {
	server  *Server
	handler http.Handler
	manager *manager.Manager
	source  *source.MemorySource
	store   *store.Store
}

type envOptions struct {
	load      bool
	withStore bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Telemetry.Logging.Level = "error"
	cfg.Telemetry.Tracing.Enabled = false

	tel, err := telemetry.New(&cfg.Telemetry, telemetry.BuildInfo{Version: "test"})
	if err != nil {
		t.Fatalf("telemetry.New() error = %v", err)
	}
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	lib := patterns.MustNew()
	ev, err := engine.NewEvaluator(lib, nil, engine.WithObserver(tel.Metrics()))
	if err != nil {
		t.Fatal(err)
	}
	v := validator.New(lib, nil)

	src, err := source.NewMemorySource([]byte(rulesYAML("v1", 100)), source.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{source: src}
	mopts := []manager.Option{manager.WithMetrics(tel.Metrics())}
	if opts.withStore {
		st, err := store.Open(store.Options{Driver: store.DriverModernc, Path: filepath.Join(t.TempDir(), "rules.db")})
		if err != nil {
			t.Fatalf("store.Open() error = %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		env.store = st
		mopts = append(mopts, manager.WithStore(st))
	}

	mgr, err := manager.New(src, v, mopts...)
	if err != nil {
		t.Fatal(err)
	}
	if opts.load {
		if _, err := mgr.Reload(context.Background()); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
	}
	env.manager = mgr

	srv, err := New(cfg, Deps{Evaluator: ev, Manager: mgr, Validator: v, Telemetry: tel})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.server = srv
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not JSON: %v: %s", err, rec.Body.String())
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Error.Code
}
