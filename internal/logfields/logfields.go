package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyRoot       = "root"
	KeyLink       = "link"
	KeyLine       = "line"
	KeyReason     = "reason"
	KeyDocuments  = "documents"
	KeyFindings   = "findings"
	KeyDurationMS = "duration_ms"
	KeyRunID      = "run_id"
	KeyPattern    = "pattern"
	KeyEvent      = "event"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Root(r string) slog.Attr          { return slog.String(KeyRoot, r) }
func Link(l string) slog.Attr          { return slog.String(KeyLink, l) }
func Line(n int) slog.Attr             { return slog.Int(KeyLine, n) }
func Reason(r string) slog.Attr        { return slog.String(KeyReason, r) }
func Documents(n int) slog.Attr        { return slog.Int(KeyDocuments, n) }
func Findings(n int) slog.Attr         { return slog.Int(KeyFindings, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Pattern(p string) slog.Attr       { return slog.String(KeyPattern, p) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func Since(start time.Time) slog.Attr { return DurationMS(float64(time.Since(start).Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
