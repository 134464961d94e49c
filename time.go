package biblio

import "time"

// Legacy clients render the MM-DD-YYYY and clock projections verbatim, so
// the formats are part of the wire contract.
const (
	dateLayout  = "01-02-2006"
	clockLayout = "3:04 PM"
)

// FormatDate renders a timestamp the way record payloads carry dates.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatClock renders the time-of-day tag stamped on comments, replies and
// likes at creation.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(clockLayout)
}
