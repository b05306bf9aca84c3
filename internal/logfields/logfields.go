package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocument   = "document"
	KeyGenerator  = "generator"
	KeySignature  = "signature"
	KeyPass       = "pass"
	KeyKind       = "kind"
	KeyPath       = "path"
	KeyRunID      = "run_id"
	KeyCategory   = "category"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Document(id string) slog.Attr    { return slog.String(KeyDocument, id) }
func Generator(name string) slog.Attr { return slog.String(KeyGenerator, name) }
func Signature(sig string) slog.Attr  { return slog.String(KeySignature, sig) }
func Pass(n int) slog.Attr            { return slog.Int(KeyPass, n) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
