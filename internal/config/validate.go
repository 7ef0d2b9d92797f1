package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// StorageKinds lists the kinds the songetl binary registers.
var StorageKinds = []string{"mssql", "mysql", "postgres", "pq", "sqlite"}

// ValidateConfig lints c without touching the network. Input directories
// are checked for existence; a missing one is only a warning because the
// run may create it first.
func ValidateConfig(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateSources(c.Sources)...)
	issues = append(issues, validateRuntime(c.Runtime)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	} else if !contains(StorageKinds, kind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; supported: %s", kind, strings.Join(StorageKinds, ", ")),
		})
	}

	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}

	if kind == "sqlite" && s.DSN == ":memory:" && !s.AutoCreate {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.auto_create",
			Message:  "in-memory sqlite starts empty; auto_create must be true",
		})
	}
	return issues
}

func validateSources(s Sources) []Issue {
	var issues []Issue
	for _, d := range []struct{ path, dir string }{
		{"sources.song_data", s.SongData},
		{"sources.log_data", s.LogData},
	} {
		if strings.TrimSpace(d.dir) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     d.path,
				Message:  d.path + " must not be empty",
			})
			continue
		}
		fi, err := os.Stat(d.dir)
		switch {
		case err != nil:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     d.path,
				Message:  fmt.Sprintf("cannot stat %s: %v", d.dir, err),
			})
		case !fi.IsDir():
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     d.path,
				Message:  fmt.Sprintf("%s is not a directory", d.dir),
			})
		}
	}

	if s.SongData != "" && filepath.Clean(s.SongData) == filepath.Clean(s.LogData) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sources",
			Message:  "song_data and log_data point at the same directory",
		})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue
	switch strings.ToLower(strings.TrimSpace(r.Lookup)) {
	case "", "row", "bulk":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.lookup",
			Message:  fmt.Sprintf("unknown lookup mode %q; use row or bulk", r.Lookup),
		})
	}
	switch strings.ToLower(strings.TrimSpace(r.OnError)) {
	case "", "abort", "skip":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.on_error",
			Message:  fmt.Sprintf("unknown failure policy %q; use abort or skip", r.OnError),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		u, err := url.Parse(m.PushgatewayURL)
		if m.PushgatewayURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  fmt.Sprintf("pushgateway backend needs an absolute URL, got %q", m.PushgatewayURL),
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend needs datadog_addr or DD_AGENT_HOST",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	return issues
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
