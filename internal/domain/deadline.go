package domain

import (
	"strings"
	"time"
)

// =============================================================================
// Alert Tiers
// =============================================================================

// AlertTier is the urgency band of a statute-of-limitations deadline.
type AlertTier string

const (
	AlertTierExpired  AlertTier = "expired"
	AlertTierCritical AlertTier = "critical"
	AlertTierWarning  AlertTier = "warning"
	AlertTierCaution  AlertTier = "caution"
	AlertTierNone     AlertTier = "none"
)

// String returns the string representation of the tier.
func (t AlertTier) String() string {
	return string(t)
}

// Urgency ranks tiers so that a larger value is more urgent.
func (t AlertTier) Urgency() int {
	switch t {
	case AlertTierExpired:
		return 4
	case AlertTierCritical:
		return 3
	case AlertTierWarning:
		return 2
	case AlertTierCaution:
		return 1
	}
	return 0
}

// AlertThresholds holds the inclusive day limits for each tier. A deadline
// at zero days or fewer is always expired.
type AlertThresholds struct {
	Critical int
	Warning  int
	Caution  int
}

// DefaultAlertThresholds are the firm's standard 30/90/180 day bands.
var DefaultAlertThresholds = AlertThresholds{
	Critical: 30,
	Warning:  90,
	Caution:  180,
}

// Validate checks the thresholds are positive and strictly ascending.
func (a AlertThresholds) Validate() error {
	const op = "AlertThresholds.Validate"
	if a.Critical <= 0 {
		return Invalid(op, "critical threshold must be positive")
	}
	if a.Warning <= a.Critical {
		return Invalid(op, "warning threshold must be greater than critical")
	}
	if a.Caution <= a.Warning {
		return Invalid(op, "caution threshold must be greater than warning")
	}
	return nil
}

// Tier maps days remaining to an alert tier. First match wins.
func (a AlertThresholds) Tier(daysRemaining int) AlertTier {
	switch {
	case daysRemaining <= 0:
		return AlertTierExpired
	case daysRemaining <= a.Critical:
		return AlertTierCritical
	case daysRemaining <= a.Warning:
		return AlertTierWarning
	case daysRemaining <= a.Caution:
		return AlertTierCaution
	}
	return AlertTierNone
}

// =============================================================================
// Deadline Classification
// =============================================================================

// DeadlineStatus is the classified state of a statute deadline.
// DaysRemaining is nil when no deadline could be read.
type DeadlineStatus struct {
	DaysRemaining *int
	Tier          AlertTier
}

// HasAlert returns true if the deadline falls inside any alert band.
func (s DeadlineStatus) HasAlert() bool {
	return s.Tier != AlertTierNone
}

// Classify computes days remaining until deadline and its alert tier.
// A nil deadline yields AlertTierNone with no day count.
func (a AlertThresholds) Classify(deadline *time.Time, today time.Time) DeadlineStatus {
	if deadline == nil {
		return DeadlineStatus{Tier: AlertTierNone}
	}
	days := DaysBetween(today, *deadline)
	return DeadlineStatus{
		DaysRemaining: &days,
		Tier:          a.Tier(days),
	}
}

// ClassifyString parses raw as a date and classifies it. Blank or
// unparsable input yields AlertTierNone.
func (a AlertThresholds) ClassifyString(raw string, today time.Time) DeadlineStatus {
	d, ok := ParseDate(raw, today.Location())
	if !ok {
		return DeadlineStatus{Tier: AlertTierNone}
	}
	return a.Classify(&d, today)
}

// ClassifyDeadline classifies deadline with DefaultAlertThresholds.
func ClassifyDeadline(deadline *time.Time, today time.Time) DeadlineStatus {
	return DefaultAlertThresholds.Classify(deadline, today)
}

// ClassifyDeadlineString classifies a raw date with DefaultAlertThresholds.
func ClassifyDeadlineString(raw string, today time.Time) DeadlineStatus {
	return DefaultAlertThresholds.ClassifyString(raw, today)
}

// =============================================================================
// Day Counting
// =============================================================================

// DaysOpen returns whole days elapsed since the client signed up. A nil or
// future sign-up date counts as zero.
func DaysOpen(signUp *time.Time, today time.Time) int {
	if signUp == nil {
		return 0
	}
	days := DaysBetween(*signUp, today)
	if days < 0 {
		return 0
	}
	return days
}

// DaysOpenString parses raw as a date and returns DaysOpen.
func DaysOpenString(raw string, today time.Time) int {
	d, ok := ParseDate(raw, today.Location())
	if !ok {
		return 0
	}
	return DaysOpen(&d, today)
}

// DaysBetween returns the number of calendar days from "from" to "to".
// Both instants are reduced to their date in from's location first, so
// time of day and DST shifts never move the count.
func DaysBetween(from, to time.Time) int {
	loc := from.Location()
	a := civilDate(from.In(loc))
	b := civilDate(to.In(loc))
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

// secondsPerDay is exact between two UTC midnights.
const secondsPerDay = 24 * 60 * 60

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StatuteDeadlineFrom returns the filing deadline for an incident under a
// limitations period of the given number of years.
func StatuteDeadlineFrom(incident time.Time, years int) time.Time {
	return incident.AddDate(years, 0, 0)
}

// dateLayouts are the formats intake forms and the hosted store emit.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate reads a date in any of the accepted layouts. Dates without a
// zone are placed in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
