package manager

import (
	"time"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/source"
	"mercator-hq/gatekeep/pkg/rules/validator"
)

// Snapshot is an activated configuration. It is never modified after
// publication.
type Snapshot struct {
	Config   *ast.RulesConfig
	Body     []byte
	Format   source.Format
	Checksum string
	Revision string
	Source   string
	LoadedAt time.Time

	// StoreID is the rules store row for this snapshot, if recorded.
	StoreID string

	// Warnings are the lint warnings accepted with this configuration.
	Warnings []validator.Issue
}

// Stats summarizes the rule set of a snapshot.
type Stats struct {
	Total   int `json:"total"`
	Enabled int `json:"enabled"`
	Regex   int `json:"regex"`
}

// Stats counts total, enabled and enabled regex-using rules.
func (s *Snapshot) Stats() Stats {
	var st Stats
	if s == nil || s.Config == nil {
		return st
	}
	st.Total = len(s.Config.Rules)
	for i := range s.Config.Rules {
		rule := &s.Config.Rules[i]
		if !rule.Enabled {
			continue
		}
		st.Enabled++
		if rule.UsesRegex() {
			st.Regex++
		}
	}
	return st
}

// Version returns the configuration version string.
func (s *Snapshot) Version() string {
	if s == nil || s.Config == nil {
		return ""
	}
	return s.Config.Version
}
