package devnode

import (
	"encoding/json"
	"net/http"

	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/store"
)

// journalEntry is the JSON form of one journaled flow start.
type journalEntry struct {
	ClientID       string          `json:"clientId"`
	Flow           string          `json:"flow"`
	Args           ir.Array        `json:"args"`
	Outcome        string          `json:"outcome"`
	Result         json.RawMessage `json:"result,omitempty"`
	ErrorCode      int             `json:"errorCode,omitempty"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
	DurationMicros int64           `json:"durationMicros"`
	Starts         int             `json:"starts"`
}

// serveJournal lists journaled flow starts, optionally for one flow.
func (n *Node) serveJournal(w http.ResponseWriter, r *http.Request) {
	if !n.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="devnode"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := n.store.Entries(r.Context(), r.URL.Query().Get("flow"))
	if err != nil {
		n.logger.Error("journal listing failed", "error", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}

	out := make([]journalEntry, len(entries))
	for i, e := range entries {
		out[i] = toJournalEntry(e)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		n.logger.Debug("journal write failed", "error", err)
	}
}

func toJournalEntry(e store.Entry) journalEntry {
	args := e.Args
	if args == nil {
		args = ir.Array{}
	}
	return journalEntry{
		ClientID:       e.ClientID,
		Flow:           e.Flow,
		Args:           args,
		Outcome:        e.Outcome,
		Result:         e.Result,
		ErrorCode:      e.ErrorCode,
		ErrorMessage:   e.ErrorMessage,
		DurationMicros: e.Duration.Microseconds(),
		Starts:         e.Starts,
	}
}
