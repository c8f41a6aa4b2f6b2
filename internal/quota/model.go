package quota

import (
	"encoding/json"
	"time"
)

// Action names a gated pipeline entry point.
type Action string

const (
	ActionOptimize       Action = "optimize"
	ActionGenerateLetter Action = "cover_letter"
	ActionSendEmail      Action = "email_send"
)

// Actions lists every gated action in a stable order.
var Actions = []Action{ActionOptimize, ActionGenerateLetter, ActionSendEmail}

// Quota is either unlimited or capped at a fixed count per period. The zero
// value is Limited(0), i.e. nothing allowed; there is no 0-means-unlimited
// sentinel.
type Quota struct {
	unlimited bool
	limit     int
}

// Unlimited returns a quota with no cap.
func Unlimited() Quota {
	return Quota{unlimited: true}
}

// Limited returns a quota capped at n uses per period.
func Limited(n int) Quota {
	if n < 0 {
		n = 0
	}
	return Quota{limit: n}
}

// IsUnlimited reports whether the quota has no cap.
func (q Quota) IsUnlimited() bool {
	return q.unlimited
}

// Limit returns the cap and whether one exists.
func (q Quota) Limit() (int, bool) {
	if q.unlimited {
		return 0, false
	}
	return q.limit, true
}

// Allows reports whether one more use fits under the quota given the current count.
func (q Quota) Allows(used int) bool {
	if q.unlimited {
		return true
	}
	return used < q.limit
}

// MarshalJSON renders {"unlimited":true} or {"limit":n}.
func (q Quota) MarshalJSON() ([]byte, error) {
	if q.unlimited {
		return json.Marshal(map[string]any{"unlimited": true})
	}
	return json.Marshal(map[string]any{"limit": q.limit})
}

// Usage is a user's consumption snapshot for one action.
type Usage struct {
	Plan     string    `json:"plan"`
	Action   Action    `json:"action"`
	Quota    Quota     `json:"quota"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed  bool      `json:"allowed"`
	Reason   string    `json:"reason,omitempty"`
	Used     int       `json:"used"`
	Quota    Quota     `json:"quota"`
	ResetsAt time.Time `json:"resetsAt"`
}
