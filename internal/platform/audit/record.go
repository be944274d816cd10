package audit

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Anonymous is the actor recorded when no principal is present.
const Anonymous = "ANONYMOUS"

// TimestampLayout is the human-readable timestamp format of a View.
const TimestampLayout = "02/01/2006 - 15:04:05"

// Record is one audit trail entry. Records are append-only.
type Record struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// View is the projection returned by the audit query endpoints.
type View struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Entity    string `json:"entity"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// ToView projects r for display.
func ToView(r *Record) View {
	details := r.Details
	if strings.TrimSpace(details) == "" {
		details = "[]"
	}
	return View{
		ID:        r.ID,
		User:      DisplayActor(r.Actor),
		Entity:    r.Entity,
		Action:    r.Action,
		Details:   details,
		Timestamp: r.Timestamp.Local().Format(TimestampLayout),
	}
}

// ToViews projects a slice of records, preserving order.
func ToViews(records []*Record) []View {
	out := make([]View, 0, len(records))
	for _, r := range records {
		out = append(out, ToView(r))
	}
	return out
}

// DisplayActor capitalizes actor for display. Empty actors and the
// framework anonymous marker render as Anonymous.
func DisplayActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" || strings.EqualFold(actor, "anonymousUser") || actor == Anonymous {
		return Anonymous
	}
	lower := strings.ToLower(actor)
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}
