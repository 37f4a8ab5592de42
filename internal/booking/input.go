package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Johnson150/cls-sub000/internal/db"
)

// MaxCapacity is written on every create and update. Enrollment is not
// checked against it.
const MaxCapacity = 4

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 or a zone-less local timestamp, which is read
// in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

func normalizeStatus(value string) (db.ClassStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(db.ClassStatusNotBookedOff):
		return db.ClassStatusNotBookedOff, nil
	case string(db.ClassStatusBookedOff):
		return db.ClassStatusBookedOff, nil
	default:
		return "", fmt.Errorf("invalid status %q", value)
	}
}

func normalizeBookedOffBy(value string) (db.BookedOffBy, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(db.BookedOffByNone):
		return db.BookedOffByNone, nil
	case string(db.BookedOffByTutor):
		return db.BookedOffByTutor, nil
	case string(db.BookedOffByStudent):
		return db.BookedOffByStudent, nil
	default:
		return "", fmt.Errorf("invalid bookedOffBy %q", value)
	}
}

// resolveBookedOff applies the status rules: a booked-off class names who
// booked it off, any other class has no booked-off fields.
func resolveBookedOff(status db.ClassStatus, by db.BookedOffBy, name string) (db.BookedOffBy, string, *Error) {
	if status == db.ClassStatusNotBookedOff {
		return db.BookedOffByNone, "", nil
	}
	if by != db.BookedOffByTutor && by != db.BookedOffByStudent {
		return "", "", invalid("booked_off_by_required", "bookedOffBy must be TUTOR or STUDENT when status is BOOKED_OFF")
	}
	return by, strings.TrimSpace(name), nil
}

func parseID(value string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

// parseIDs parses and de-duplicates ids, keeping first-seen order.
func parseIDs(values []string, code, label string) ([]pgtype.UUID, *Error) {
	ids := make([]pgtype.UUID, 0, len(values))
	seen := make(map[[16]byte]struct{}, len(values))
	for _, value := range values {
		id, err := parseID(value)
		if err != nil {
			return nil, invalid(code, fmt.Sprintf("invalid %s id %q", label, value))
		}
		if _, ok := seen[id.Bytes]; ok {
			continue
		}
		seen[id.Bytes] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// missingIDs returns the entries of want not present in found.
func missingIDs(want, found []pgtype.UUID) []pgtype.UUID {
	present := make(map[[16]byte]struct{}, len(found))
	for _, id := range found {
		present[id.Bytes] = struct{}{}
	}
	var missing []pgtype.UUID
	for _, id := range want {
		if _, ok := present[id.Bytes]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func requireFound(want, found []pgtype.UUID, code, label string) *Error {
	missing := missingIDs(want, found)
	if len(missing) == 0 {
		return nil
	}
	return invalid(code, fmt.Sprintf("unknown %s id %s", label, uuid.UUID(missing[0].Bytes).String()))
}

// bookedOffTargets picks the people to charge for a book-off: those whose
// name matches, or everyone linked when nobody matches.
func bookedOffTargets(name string, ids []pgtype.UUID, names []string) []pgtype.UUID {
	name = strings.TrimSpace(name)
	if name != "" {
		var matched []pgtype.UUID
		for i, id := range ids {
			if i < len(names) && strings.EqualFold(strings.TrimSpace(names[i]), name) {
				matched = append(matched, id)
			}
		}
		if len(matched) > 0 {
			return matched
		}
	}
	return ids
}

func pgTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}
