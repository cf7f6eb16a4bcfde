// Package host adapts the engine to the checkout-function protocol.
//
// A host invocation reads one JSON Input from stdin and writes one JSON
// Output to stdout. The rules configuration travels inside the input as the
// string value of a shop metafield. A missing or unparsable configuration
// is not an error: the function returns no errors and logs why, so a
// misconfigured shop never blocks checkout.
//
// Logs go to the configured logger (stderr in the CLI); stdout carries only
// the Output document.
package host
