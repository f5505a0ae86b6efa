package loader

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is one problem found while loading a network directory.
type Issue struct {
	Severity Severity
	Message  string
	File     string
}

func (i Issue) String() string {
	if i.File != "" {
		return fmt.Sprintf("%s: %s: %s", i.Severity, i.File, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// Report collects loader issues. Errors mean the affected file was skipped;
// warnings mean the network loaded but something is off.
type Report struct {
	Issues []Issue
}

func (r *Report) Errorf(file, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, File: file, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) Warnf(file, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, File: file, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func (r *Report) String() string {
	var b strings.Builder
	for _, issue := range r.Issues {
		b.WriteString(issue.String())
		b.WriteByte('\n')
	}
	return b.String()
}
