package server

import "github.com/dtnitsch/geo-audit/models"

// AuditRequest is the body of POST /api/audit. The bearer token travels in
// the Authorization header, never in the body.
type AuditRequest struct {
	TargetLabel string   `json:"target_label"`
	Target      string   `json:"target"`
	ExtraURLs   []string `json:"extra_urls"`
	Model       string   `json:"model"`
}

// SignalsRequest is the body of POST /api/signals.
type SignalsRequest struct {
	Target    string   `json:"target"`
	ExtraURLs []string `json:"extra_urls"`
}

type SignalsResponse struct {
	Domain      models.DomainInfo   `json:"domain"`
	Pages       []models.PageSignal `json:"pages"`
	InvalidURLs []string            `json:"invalid_urls,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}
