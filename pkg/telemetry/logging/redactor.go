package logging

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"mercator-hq/gatekeep/pkg/config"
)

// Redactor masks personal data that can reach logs through carts: buyer
// emails, phone numbers, card numbers and credentials for the rules
// repository.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternEmail       = "email"
	PatternPhone       = "phone"
	PatternCreditCard  = "credit_card"
	PatternBearerToken = "bearer_token"
	PatternGitToken    = "git_token"
	PatternPassword    = "password"
)

var defaultPatterns = map[string]struct {
	regex       string
	replacement string
}{
	PatternEmail: {
		regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		replacement: "***@***",
	},
	PatternPhone: {
		regex:       `(?:\+?\d{1,3}[-.\s]?)?\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`,
		replacement: "***-***-****",
	},
	PatternCreditCard: {
		regex:       `\b(?:\d{4}[ -]?){3}\d{4}\b`,
		replacement: "****-****-****-****",
	},
	PatternBearerToken: {
		regex:       `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`,
		replacement: "Bearer ***",
	},
	PatternGitToken: {
		regex:       `\b(?:ghp|gho|ghs|github_pat|glpat)_[a-zA-Z0-9_]+`,
		replacement: "***",
	},
	PatternPassword: {
		regex:       `(?i)(password|passwd|passphrase)[:=]\s*\S+`,
		replacement: "$1=***",
	},
}

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = []string{
	"password", "passphrase", "secret", "token", "authorization",
	"email", "phone", "address1", "address2",
}

// NewRedactor creates a Redactor with the built-in patterns plus custom
// ones. Custom patterns that fail to compile are skipped; config validation
// reports them before a logger is built.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}

	names := make([]string, 0, len(defaultPatterns))
	for name := range defaultPatterns {
		names = append(names, name)
	}
	// Stable order keeps overlapping replacements deterministic.
	sort.Strings(names)
	for _, name := range names {
		p := defaultPatterns[name]
		r.patterns = append(r.patterns, &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// Len returns the number of active patterns.
func (r *Redactor) Len() int {
	return len(r.patterns)
}

// RedactString masks every pattern match in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactAttr masks an attribute. Sensitive keys are masked whole; other
// string values go through the patterns. Groups are redacted recursively.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindString:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, maskValue(v.String()))
		}
		return slog.String(a.Key, r.RedactString(v.String()))
	case slog.KindAny:
		if isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, r.RedactString(err.Error()))
		}
		return slog.Attr{Key: a.Key, Value: v}
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskValue keeps a short prefix of long values so operators can tell two
// masked values apart.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "***"
	}
	return v[:2] + "***"
}

// RedactEmail redacts an email address partially (shows first char and domain).
func RedactEmail(email string) string {
	user, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}
	if user == "" {
		return "***@" + domain
	}
	return user[:1] + "***@" + domain
}
