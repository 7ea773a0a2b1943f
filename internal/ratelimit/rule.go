package ratelimit

import (
	"time"

	"github.com/suteetoe/grantdesk/pkg/config"
)

// Rule is a named limit class: at most Limit requests per Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Entry is the counter kept per identity and rule.
type Entry struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

// Expired reports whether the window of e has elapsed at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ResetAt)
}

// Decision is the outcome of one Check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is the number of whole seconds until the window resets.
	// Set only when the request is denied.
	RetryAfter int
}

// Rules are the configured limit classes.
type Rules struct {
	Strict   Rule
	Moderate Rule
	Public   Rule
}

// RulesFromConfig builds the limit classes from configuration.
func RulesFromConfig(cfg config.RateLimitConfig) Rules {
	return Rules{
		Strict:   Rule{Name: "strict", Limit: cfg.Strict.Limit, Window: cfg.Strict.Window},
		Moderate: Rule{Name: "moderate", Limit: cfg.Moderate.Limit, Window: cfg.Moderate.Window},
		Public:   Rule{Name: "public", Limit: cfg.Public.Limit, Window: cfg.Public.Window},
	}
}

// MaxWindow is the longest window of any class.
func (r Rules) MaxWindow() time.Duration {
	return max(r.Strict.Window, r.Moderate.Window, r.Public.Window)
}
