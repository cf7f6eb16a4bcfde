// Gatekeep evaluates checkout validation rules under fixed guardrails.
//
// Usage:
//
//	# Host protocol: checkout input on stdin, function output on stdout
//	gatekeep evaluate < input.json
//
//	# Evaluate a rules file against a record and explain every rule
//	gatekeep evaluate --rules rules.yaml --record cart.json --explain
//
//	# Start the HTTP service
//	gatekeep run --config gatekeep.yaml
//
//	# Validate rules files
//	gatekeep lint --dir rules/ --strict
//
//	# Measure evaluation latency against synthetic rules
//	gatekeep bench --rules 100 --regex 30
package main

func main() {
	Execute()
}
