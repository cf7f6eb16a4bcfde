// Package logging provides structured logging with PII redaction.
//
// The package wraps log/slog with:
//   - JSON, text and console output
//   - redaction of buyer emails, phone numbers, card numbers and repository
//     credentials, applied inside the slog handler
//   - context-aware logging with request, invocation and rules version IDs
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "rules evaluated", "errors", 2)
//
// Packages that accept a *slog.Logger get logger.Slog(), which redacts the
// same way.
package logging
