// Package store records activated rules configurations in SQLite.
//
// Each successful reload appends a Version row holding the raw body, its
// checksum and provenance. Saving a body whose checksum equals the latest
// row is a no-op, so repeated reloads of unchanged rules do not grow the
// history. A cron-driven Scheduler prunes the table to the newest N rows.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go) and
// "sqlite3" (github.com/mattn/go-sqlite3, cgo).
package store
