package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// openTestStore opens a store in a temp directory. The cgo driver is skipped
// when the binary was built without cgo.
func openTestStore(t *testing.T, driver string) *Store {
	t.Helper()

	s, err := Open(Options{
		Driver: driver,
		Path:   filepath.Join(t.TempDir(), "nested", "rules.db"),
	})
	if err != nil {
		if driver == DriverCgo && strings.Contains(err.Error(), "CGO_ENABLED=0") {
			t.Skip("go-sqlite3 requires cgo")
		}
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testVersion(n int) Version {
	return Version{
		Version:   fmt.Sprintf("v%d", n),
		Checksum:  fmt.Sprintf("sum-%d", n),
		Revision:  fmt.Sprintf("rev-%d", n),
		Source:    "file:rules.yaml",
		Format:    "yaml",
		RuleCount: n,
		Body:      []byte(fmt.Sprintf("version: v%d\n", n)),
	}
}

// TestOpen_Errors tests driver and path validation.
func TestOpen_Errors(t *testing.T) {
	if _, err := Open(Options{Driver: "postgres", Path: "x.db"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open() error = %v, want ErrUnknownDriver", err)
	}
	if _, err := Open(Options{}); err == nil {
		t.Error("expected error for empty path")
	}
}

// TestStore_Drivers runs the store lifecycle against both drivers.
func TestStore_Drivers(t *testing.T) {
	for _, driver := range []string{DriverModernc, DriverCgo} {
		t.Run(driver, func(t *testing.T) {
			s := openTestStore(t, driver)
			ctx := context.Background()

			if err := s.Ping(ctx); err != nil {
				t.Fatalf("Ping() error = %v", err)
			}
			if _, err := s.Latest(ctx); !errors.Is(err, ErrNotFound) {
				t.Errorf("Latest() on empty store error = %v, want ErrNotFound", err)
			}

			saved, created, err := s.Save(ctx, testVersion(1))
			if err != nil || !created {
				t.Fatalf("Save() = %v, %v", created, err)
			}
			if saved.ID == "" || saved.CreatedAt.IsZero() {
				t.Errorf("Save() did not assign ID and CreatedAt: %+v", saved)
			}

			got, err := s.Get(ctx, saved.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got.Body) != "version: v1\n" || got.RuleCount != 1 {
				t.Errorf("Get() = %+v", got)
			}
			if s.Driver() != driver {
				t.Errorf("Driver() = %q", s.Driver())
			}
		})
	}
}

// TestStore_SaveDedup tests that an unchanged checksum is not stored twice.
func TestStore_SaveDedup(t *testing.T) {
	s := openTestStore(t, DriverModernc)
	ctx := context.Background()

	first, created, err := s.Save(ctx, testVersion(1))
	if err != nil || !created {
		t.Fatalf("first Save() = %v, %v", created, err)
	}

	again, created, err := s.Save(ctx, testVersion(1))
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("identical checksum should not create a row")
	}
	if again.ID != first.ID {
		t.Errorf("dedup returned %s, want %s", again.ID, first.ID)
	}

	// A checksum seen earlier but not latest is a new activation.
	if _, _, err := s.Save(ctx, testVersion(2)); err != nil {
		t.Fatal(err)
	}
	if _, created, _ := s.Save(ctx, testVersion(1)); !created {
		t.Error("rollback to an older checksum should create a row")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}

	if _, _, err := s.Save(ctx, Version{}); err == nil {
		t.Error("expected error for empty checksum")
	}
}

// TestStore_ListAndPrune tests ordering, limits and pruning.
func TestStore_ListAndPrune(t *testing.T) {
	s := openTestStore(t, DriverModernc)
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		v := testVersion(i)
		v.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, _, err := s.Save(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 || all[0].Version != "v5" || all[4].Version != "v1" {
		t.Fatalf("List() order = %v", versionsOf(all))
	}
	if all[0].Body != nil {
		t.Error("List() should not load bodies")
	}
	if !all[0].CreatedAt.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("CreatedAt = %v", all[0].CreatedAt)
	}

	limited, _ := s.List(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d rows", len(limited))
	}

	deleted, err := s.Prune(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 3 {
		t.Errorf("Prune() deleted %d, want 3", deleted)
	}
	rest, _ := s.List(ctx, 0)
	if got := versionsOf(rest); got != "v5,v4" {
		t.Errorf("after prune = %s, want v5,v4", got)
	}

	latest, err := s.Latest(ctx)
	if err != nil || latest.Version != "v5" {
		t.Errorf("Latest() = %v, %v", latest, err)
	}

	if _, err := s.Prune(ctx, 0); err == nil {
		t.Error("expected error for keep=0")
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
}

func versionsOf(vs []Version) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Version
	}
	return strings.Join(names, ",")
}
