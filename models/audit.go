package models

import "time"

// Credentials is the bearer token sent to the chat-completions endpoint.
// String never reveals the token.
type Credentials string

func (c Credentials) String() string {
	if c == "" {
		return ""
	}
	return "[redacted]"
}

// Empty reports whether no token was supplied.
func (c Credentials) Empty() bool { return len(c) == 0 }

// AuditInput is the inbound call from a presentation shell.
type AuditInput struct {
	TargetLabel string      `json:"target_label"`
	Target      string      `json:"target"`
	ExtraURLs   []string    `json:"extra_urls,omitempty"`
	Model       string      `json:"model,omitempty"`
	Credentials Credentials `json:"-"`
}

// AuditRequest is everything the dispatcher needs for one run. Built fresh per run.
type AuditRequest struct {
	TargetLabel string
	Domain      DomainInfo
	Pages       []PageSignal
	Keywords    []string
	Model       string
	Credentials Credentials
}

// AuditReport is the opaque text returned by the provider.
type AuditReport string

// AuditResult is returned to the shell: the signals plus the report.
type AuditResult struct {
	RunID       string       `json:"run_id" yaml:"run_id"`
	TargetLabel string       `json:"target_label" yaml:"target_label"`
	Domain      DomainInfo   `json:"domain" yaml:"domain"`
	Pages       []PageSignal `json:"pages" yaml:"pages"`
	Keywords    []string     `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Model       string       `json:"model" yaml:"model"`
	Report      AuditReport  `json:"report" yaml:"report"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Cached      bool         `json:"cached" yaml:"cached"`
}
