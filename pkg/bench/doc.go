// Package bench generates synthetic rule configurations and measures
// evaluation latency against them.
//
// Generated configurations mirror the shapes seen in production checkouts:
// numeric threshold rules that never fire, so every rule is evaluated, plus
// preset regex rules over the shipping address. Run reports latency
// percentiles and how often the guardrails truncated a pass.
package bench
