package sampler

import "time"

// Outcome is one measured invocation. Elapsed covers only the StartFlow
// round trip.
type Outcome struct {
	Flow     string         `json:"flow"`
	ClientID string         `json:"client_id"`
	Start    time.Time      `json:"start"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// SetExtra records a scenario-specific field.
func (o *Outcome) SetExtra(key string, value any) {
	if o.Extra == nil {
		o.Extra = make(map[string]any)
	}
	o.Extra[key] = value
}
