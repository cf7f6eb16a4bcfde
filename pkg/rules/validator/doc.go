// Package validator lints rules configurations before they are activated.
//
// Evaluation never fails on a bad rule; an unknown field or a malformed
// pattern simply never matches. The validator is where those mistakes are
// surfaced, at load time, as a Report of error and warning Issues. Each
// issue carries the rule ID and a path such as
// "rules[2].conditions.criteria[0]" locating the offending node.
//
// Errors describe rules that cannot behave as written (unknown field path,
// unknown preset, uncompilable pattern, wrong literal shape for the
// operator, nesting beyond the depth limit, duplicate IDs). Warnings
// describe rules that run but probably not as intended (empty groups,
// operators that never apply to a field's type, guardrails that will
// truncate the configuration).
//
// # Basic Usage
//
//	v := validator.New(lib, engine.DefaultGuardrails())
//	report := v.Validate(cfg)
//	if err := report.ToError(false); err != nil {
//	    return err
//	}
package validator
