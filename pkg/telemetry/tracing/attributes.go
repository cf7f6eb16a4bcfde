package tracing

import (
	"mercator-hq/gatekeep/pkg/rules/engine"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on service spans.
const (
	AttrRequestID      = "gatekeep.request_id"
	AttrRulesVersion   = "gatekeep.rules.version"
	AttrRulesSource    = "gatekeep.rules.source"
	AttrRulesCount     = "gatekeep.rules.count"
	AttrRulesEvaluated = "gatekeep.rules.evaluated"
	AttrErrorsCount    = "gatekeep.errors.count"
	AttrErrorRuleIDs   = "gatekeep.errors.rule_ids"
	AttrElapsedMicros  = "gatekeep.elapsed_us"
	AttrReloadResult   = "gatekeep.reload.result"
)

func serverSpan() trace.SpanStartOption {
	return trace.WithSpanKind(trace.SpanKindServer)
}

// SetEvaluationAttributes records the outcome of an evaluation pass.
func SetEvaluationAttributes(span trace.Span, version string, result engine.EvaluationResult) {
	ids := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		ids[i] = e.RuleID
	}
	span.SetAttributes(
		attribute.String(AttrRulesVersion, version),
		attribute.Int(AttrRulesEvaluated, result.RulesEvaluated),
		attribute.Int(AttrErrorsCount, len(result.Errors)),
		attribute.StringSlice(AttrErrorRuleIDs, ids),
		attribute.Int64(AttrElapsedMicros, result.Elapsed.Microseconds()),
	)
}

// SetReloadAttributes records a rules reload.
func SetReloadAttributes(span trace.Span, source, version string, rules int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	span.SetAttributes(
		attribute.String(AttrRulesSource, source),
		attribute.String(AttrRulesVersion, version),
		attribute.Int(AttrRulesCount, rules),
		attribute.String(AttrReloadResult, result),
	)
	SetError(span, err)
}

// SetRequestID records the request ID.
func SetRequestID(span trace.Span, requestID string) {
	if requestID == "" {
		return
	}
	span.SetAttributes(attribute.String(AttrRequestID, requestID))
}
