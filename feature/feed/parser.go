package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rental-sync/core/storage/models"
)

// Event is a normalized calendar occurrence extracted from a feed.
// Dates are canonical YYYY-MM-DD strings; time-of-day is not modeled.
type Event struct {
	UID string
	// FallbackUID marks UIDs synthesized from event content because the feed
	// did not provide one.
	FallbackUID bool

	Summary     string
	Description string

	Start string
	End   string

	Status models.EventStatus
	// StatusRaw preserves the feed's STATUS/METHOD value as-is when non-empty.
	StatusRaw string

	AllDay       bool
	TimezoneHint string
	// HasRecurrence flags an RRULE on the event. Recurrences are never
	// expanded into multiple occurrences.
	HasRecurrence bool

	Kind models.EventKind
	// Raw retains the unfolded VEVENT text for audit.
	Raw string
}

// blockVocabulary is the closed set of placeholder summaries that mark a date
// closure rather than a guest booking. Matching is case-insensitive and
// substring-based, so "Airbnb (Not available)" classifies as a block.
var blockVocabulary = []string{
	"not available",
	"unavailable",
	"blocked",
	"closed",
	"nicht verfügbar",
	"gesperrt",
	"no disponible",
	"bloqueado",
	"indisponible",
	"fermé",
	"non disponibile",
}

var durationPattern = regexp.MustCompile(`(?i)^-?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+(?:[.,]\d+)?)H)?(?:(\d+(?:[.,]\d+)?)M)?(?:(\d+(?:[.,]\d+)?)S)?)?$`)

// Parse converts a raw iCalendar document into normalized events.
//
// It returns the parsed events together with non-fatal parse notes (dropped
// events, synthesized UIDs). Individual malformed events never fail the whole
// feed.
func Parse(raw string) ([]Event, []string) {
	lines := unfold(raw)

	var (
		events  []Event
		notes   []string
		inEvent bool
		block   []string
	)

	for _, line := range lines {
		key, _, value := splitContentLine(line)
		switch {
		case strings.EqualFold(key, "BEGIN") && strings.EqualFold(value, "VEVENT"):
			inEvent = true
			block = []string{line}
		case strings.EqualFold(key, "END") && strings.EqualFold(value, "VEVENT"):
			if inEvent {
				block = append(block, line)
				ev, note := parseEvent(block)
				if note != "" {
					notes = append(notes, note)
				}
				if ev != nil {
					events = append(events, *ev)
				}
			}
			inEvent = false
			block = nil
		default:
			if inEvent {
				block = append(block, line)
			}
		}
	}

	return events, notes
}

// parseEvent builds one Event from the unfolded lines of a VEVENT block.
// It returns a nil event with a note when the event must be dropped.
func parseEvent(lines []string) (*Event, string) {
	ev := Event{
		Status: models.EventConfirmed,
		Raw:    strings.Join(lines, "\n"),
	}

	var duration string

	for _, line := range lines {
		key, params, value := splitContentLine(line)
		if key == "" {
			continue
		}

		switch strings.ToUpper(key) {
		case "UID":
			ev.UID = unescape(value)
		case "SUMMARY":
			ev.Summary = unescape(value)
		case "DESCRIPTION":
			ev.Description = unescape(value)
		case "DTSTART":
			date, allDay, tz := parseDateValue(value, params)
			ev.Start = date
			ev.AllDay = allDay
			if tz != "" {
				ev.TimezoneHint = tz
			}
		case "DTEND":
			date, _, tz := parseDateValue(value, params)
			ev.End = date
			if tz != "" && ev.TimezoneHint == "" {
				ev.TimezoneHint = tz
			}
		case "DURATION":
			duration = value
		case "STATUS", "METHOD":
			applyStatus(&ev, value)
		case "RRULE":
			ev.HasRecurrence = true
		}
	}

	if ev.Start == "" && ev.End == "" {
		return nil, fmt.Sprintf("dropped event %q: no usable start or end date", ev.Summary)
	}
	if ev.Start == "" {
		return nil, fmt.Sprintf("dropped event %q: missing start date", ev.Summary)
	}

	// DTEND fallbacks: DURATION first, then a 1-night default.
	if ev.End == "" {
		nights := 1
		if duration != "" {
			if d, ok := parseDurationDays(duration); ok && d > 0 {
				nights = d
			}
		}
		ev.End = addDays(ev.Start, nights)
	}

	var note string
	if ev.UID == "" {
		ev.UID = fallbackUID(ev.Start, ev.End, ev.Summary)
		ev.FallbackUID = true
		note = fmt.Sprintf("event %q (%s) has no UID, synthesized %s", ev.Summary, ev.Start, ev.UID)
	}

	ev.Kind = classify(ev.Summary)

	return &ev, note
}

// unfold undoes RFC 5545 line folding: a line beginning with a space or tab
// continues the previous logical line, without the leading whitespace.
func unfold(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var logical []string
	for _, line := range strings.Split(raw, "\n") {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') && len(logical) > 0 {
			logical[len(logical)-1] += line[1:]
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		logical = append(logical, line)
	}
	return logical
}

// splitContentLine breaks "KEY;PARAMS:VALUE" into its three parts.
func splitContentLine(line string) (key, params, value string) {
	colon := strings.Index(line, ":")
	if colon == -1 {
		return "", "", ""
	}
	left := line[:colon]
	value = line[colon+1:]

	if semi := strings.Index(left, ";"); semi != -1 {
		return left[:semi], left[semi+1:], value
	}
	return left, "", value
}

// parseDateValue normalizes an iCal date or date-time value to YYYY-MM-DD.
// The second return reports whether the value was an all-day date, the third
// the timezone identifier from the parameters, if any.
func parseDateValue(value, params string) (string, bool, string) {
	tz := paramValue(params, "TZID")
	allDay := strings.Contains(strings.ToUpper(params), "VALUE=DATE") && !strings.Contains(strings.ToUpper(params), "DATE-TIME")

	value = strings.TrimSpace(value)

	formats := []struct {
		layout string
		allDay bool
	}{
		{"20060102T150405Z", false},
		{"20060102T150405", false},
		{"20060102", true},
		{"2006-01-02T15:04:05Z", false},
		{"2006-01-02", true},
	}
	for _, f := range formats {
		if t, err := time.Parse(f.layout, value); err == nil {
			return t.Format("2006-01-02"), allDay || f.allDay, tz
		}
	}
	return "", false, tz
}

// paramValue extracts a parameter value from "KEY=V;KEY2=V2" parameter text.
func paramValue(params, name string) string {
	for _, p := range strings.Split(params, ";") {
		if eq := strings.Index(p, "="); eq != -1 && strings.EqualFold(p[:eq], name) {
			return strings.Trim(p[eq+1:], `"`)
		}
	}
	return ""
}

// parseDurationDays converts an RFC 5545 DURATION to whole days. Fractional
// hours and minutes round up to the next whole day, so any time component of
// less than a day still occupies one night.
func parseDurationDays(value string) (int, bool) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, false
	}

	days := 0
	if m[1] != "" {
		w, _ := strconv.Atoi(m[1])
		days += w * 7
	}
	if m[2] != "" {
		d, _ := strconv.Atoi(m[2])
		days += d
	}

	var extraHours float64
	if m[3] != "" {
		h, _ := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", "."), 64)
		extraHours += h
	}
	if m[4] != "" {
		min, _ := strconv.ParseFloat(strings.ReplaceAll(m[4], ",", "."), 64)
		extraHours += min / 60
	}
	if m[5] != "" {
		sec, _ := strconv.ParseFloat(strings.ReplaceAll(m[5], ",", "."), 64)
		extraHours += sec / 3600
	}
	if extraHours > 0 {
		days += int(math.Ceil(extraHours / 24))
	}

	return days, true
}

// addDays returns a YYYY-MM-DD date n days after the given date.
func addDays(date string, n int) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format("2006-01-02")
}

// applyStatus maps a STATUS/METHOD value onto the event lifecycle status.
func applyStatus(ev *Event, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	ev.StatusRaw = value

	switch strings.ToUpper(value) {
	case "CANCELLED", "CANCEL":
		ev.Status = models.EventCancelled
	case "TENTATIVE":
		ev.Status = models.EventTentative
	}
}

// classify labels an event as a block when its summary is empty or matches
// the placeholder vocabulary, and as a booking otherwise.
func classify(summary string) models.EventKind {
	s := strings.ToLower(strings.TrimSpace(summary))
	if s == "" {
		return models.KindBlock
	}
	for _, term := range blockVocabulary {
		if strings.Contains(s, term) {
			return models.KindBlock
		}
	}
	return models.KindBooking
}

// fallbackUID synthesizes a stable identifier for events without a UID.
func fallbackUID(start, end, summary string) string {
	sum := sha256.Sum256([]byte(start + end + summary))
	return "fallback-" + hex.EncodeToString(sum[:8])
}

// unescape undoes the common iCal text escape sequences.
func unescape(value string) string {
	value = strings.ReplaceAll(value, `\n`, "\n")
	value = strings.ReplaceAll(value, `\,`, ",")
	value = strings.ReplaceAll(value, `\;`, ";")
	value = strings.ReplaceAll(value, `\\`, `\`)
	return value
}
