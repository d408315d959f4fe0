package service

import (
	"strings"
	"time"

	"backend/internal/model"
)

// ApprovalFilter is a stateless read-side predicate over approval requests.
// Filters compose by AND; application order never changes the result set.
type ApprovalFilter func(model.ApprovalRequest) bool

// ByType keeps requests of the given type.
func ByType(t model.ApprovalType) ApprovalFilter {
	return func(r model.ApprovalRequest) bool {
		return r.Type == t
	}
}

// ByStatus keeps requests with the given status.
func ByStatus(status model.ApprovalStatus) ApprovalFilter {
	return func(r model.ApprovalRequest) bool {
		return r.Status == status
	}
}

// ByRequester keeps requests whose requester name contains the given
// substring, case-insensitively.
func ByRequester(name string) ApprovalFilter {
	needle := strings.ToLower(name)
	return func(r model.ApprovalRequest) bool {
		return strings.Contains(strings.ToLower(r.RequesterName), needle)
	}
}

// CreatedSince keeps requests created at or after cutoff. A zero cutoff
// keeps everything (all-time window).
func CreatedSince(cutoff time.Time) ApprovalFilter {
	return func(r model.ApprovalRequest) bool {
		return cutoff.IsZero() || !r.CreatedAt.Before(cutoff)
	}
}

// Window translates the UI's date-window selector (7d, 30d, all) into a
// CreatedSince cutoff relative to now.
func Window(window string, now time.Time) ApprovalFilter {
	switch window {
	case "7d":
		return CreatedSince(now.AddDate(0, 0, -7))
	case "30d":
		return CreatedSince(now.AddDate(0, 0, -30))
	default:
		return CreatedSince(time.Time{})
	}
}

// Search keeps requests whose description, type or requester name contains
// the query, case-insensitively. An empty query keeps everything.
func Search(query string) ApprovalFilter {
	needle := strings.ToLower(query)
	return func(r model.ApprovalRequest) bool {
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.Description), needle) ||
			strings.Contains(strings.ToLower(string(r.Type)), needle) ||
			strings.Contains(strings.ToLower(r.RequesterName), needle)
	}
}

// Apply returns the requests matching every filter, preserving input order.
// The input slice is never mutated.
func Apply(requests []model.ApprovalRequest, filters ...ApprovalFilter) []model.ApprovalRequest {
	result := make([]model.ApprovalRequest, 0, len(requests))
outer:
	for _, r := range requests {
		for _, f := range filters {
			if !f(r) {
				continue outer
			}
		}
		result = append(result, r)
	}
	return result
}
