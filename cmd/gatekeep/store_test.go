package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/gatekeep/pkg/cli"
	"mercator-hq/gatekeep/pkg/rules/store"
)

// seedStore writes n versions to a fresh database and returns its path and
// the stored versions, oldest first.
func seedStore(t *testing.T, n int) (string, []store.Version) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.db")
	s, err := store.Open(store.Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var saved []store.Version
	for i := 0; i < n; i++ {
		v, _, err := s.Save(context.Background(), store.Version{
			Version:   fmt.Sprintf("v%d", i+1),
			Checksum:  fmt.Sprintf("sum-%d", i),
			Revision:  fmt.Sprintf("0123456789abcdef%d", i),
			Source:    "file:rules.yaml",
			Format:    "yaml",
			RuleCount: i + 1,
			Body:      []byte(fmt.Sprintf("version: v%d\n", i+1)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
		saved = append(saved, *v)
	}
	return path, saved
}

func setStoreFlags(path, format string) {
	storeFlags.path = path
	storeFlags.driver = ""
	storeFlags.format = format
	storeFlags.limit = 20
	storeFlags.keep = 0
	storeFlags.body = false
}

func TestStoreList(t *testing.T) {
	path, _ := seedStore(t, 3)
	setStoreFlags(path, "text")

	cmd, out := newTestCommand(nil)
	if err := listVersions(cmd, nil); err != nil {
		t.Fatalf("listVersions() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header plus 3:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "v3") || !strings.Contains(lines[3], "v1") {
		t.Errorf("versions not listed newest first:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "0123456789ab ") {
		t.Errorf("revision not shortened: %q", lines[1])
	}
}

func TestStoreList_JSON(t *testing.T) {
	path, _ := seedStore(t, 3)
	setStoreFlags(path, "json")
	storeFlags.limit = 2

	cmd, out := newTestCommand(nil)
	if err := listVersions(cmd, nil); err != nil {
		t.Fatalf("listVersions() error = %v", err)
	}

	var versions []store.Version
	if err := json.Unmarshal(out.Bytes(), &versions); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != "v3" {
		t.Errorf("versions = %+v", versions)
	}
}

func TestStoreList_Empty(t *testing.T) {
	setStoreFlags(filepath.Join(t.TempDir(), "empty.db"), "text")

	cmd, out := newTestCommand(nil)
	if err := listVersions(cmd, nil); err != nil {
		t.Fatalf("listVersions() error = %v", err)
	}
	if !strings.Contains(out.String(), "No rules versions stored") {
		t.Errorf("output = %q", out.String())
	}
}

func TestStoreShow(t *testing.T) {
	path, saved := seedStore(t, 2)
	setStoreFlags(path, "text")
	storeFlags.body = true

	cmd, out := newTestCommand(nil)
	if err := showVersion(cmd, []string{saved[0].ID}); err != nil {
		t.Fatalf("showVersion() error = %v", err)
	}
	for _, want := range []string{"ID:       " + saved[0].ID, "Version:  v1", "Checksum: sum-0", "version: v1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	cmd, _ = newTestCommand(nil)
	if code := cli.ExitCode(showVersion(cmd, []string{"missing"})); code != cli.ExitFailure {
		t.Errorf("exit code for unknown id = %d", code)
	}
}

func TestStorePrune(t *testing.T) {
	path, _ := seedStore(t, 5)
	setStoreFlags(path, "text")
	storeFlags.keep = 2

	cmd, out := newTestCommand(nil)
	if err := pruneVersions(cmd, nil); err != nil {
		t.Fatalf("pruneVersions() error = %v", err)
	}
	if !strings.Contains(out.String(), "Pruned 3 version(s), kept newest 2") {
		t.Errorf("output = %q", out.String())
	}

	s, err := store.Open(store.Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if n, _ := s.Count(context.Background()); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
