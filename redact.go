package signet

// Redact returns a loggable form of a secret: the first four characters
// followed by "...". Values of four characters or fewer are fully masked.
// Secrets must never be logged in full; log the redacted form only.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "..."
}

// ClampDuration bounds seconds to [minSec, maxSec], substituting def when
// seconds is zero or negative.
func ClampDuration(seconds, def, minSec, maxSec int) int {
	if seconds <= 0 {
		seconds = def
	}
	if seconds < minSec {
		return minSec
	}
	if seconds > maxSec {
		return maxSec
	}
	return seconds
}
