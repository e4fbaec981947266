// Package schedule resolves recording timestamps to class sessions using a
// fixed weekly timetable.
package schedule

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnscheduled is returned when a timestamp matches no class slot.
var ErrUnscheduled = errors.New("recording matches no scheduled class")

// Session identifies one scheduled class occurrence: a class code plus the
// calendar date of the recording.
type Session struct {
	ClassCode string
	Date      string // YYYY-MM-DD
}

// Key returns the canonical dedup key for the session.
func (s Session) Key() string {
	return s.ClassCode + "|" + s.Date
}

func (s Session) String() string {
	return s.Date + " " + s.ClassCode
}

// Entry is one weekly timetable slot. Start must be quarter-hour aligned
// ("08:00", "09:30", "12:30").
type Entry struct {
	Day       time.Weekday
	Start     string
	ClassCode string
}

type slotKey struct {
	day    time.Weekday
	minute int // minutes since midnight
}

// Schedule is an immutable weekly timetable. Build one with New and pass it
// in explicitly; there is no package-level table.
type Schedule struct {
	slots      map[slotKey]string
	tolerance  time.Duration
	slotLength time.Duration
}

const (
	defaultTolerance  = time.Minute
	defaultSlotLength = 75 * time.Minute
)

// New builds a schedule from timetable entries. Entries with start times
// that are not quarter-hour aligned are rejected.
func New(entries []Entry) (*Schedule, error) {
	slots := make(map[slotKey]string, len(entries))
	for _, e := range entries {
		t, err := time.Parse("15:04", e.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid slot start %q: %v", e.Start, err)
		}
		minute := t.Hour()*60 + t.Minute()
		if minute%15 != 0 {
			return nil, fmt.Errorf("slot start %q is not quarter-hour aligned", e.Start)
		}
		if e.ClassCode == "" {
			return nil, fmt.Errorf("slot %s %s has no class code", e.Day, e.Start)
		}
		slots[slotKey{e.Day, minute}] = e.ClassCode
	}
	return &Schedule{
		slots:      slots,
		tolerance:  defaultTolerance,
		slotLength: defaultSlotLength,
	}, nil
}

// Default returns the MBA term timetable.
func Default() *Schedule {
	s, err := New([]Entry{
		{time.Monday, "08:00", "MBA505"},
		{time.Monday, "09:30", "MBA530"},
		{time.Monday, "12:30", "MBA550"},
		{time.Tuesday, "08:00", "MBA501"},
		{time.Tuesday, "09:30", "MBA520"},
		{time.Tuesday, "12:30", "MBA548"},
		{time.Wednesday, "08:00", "MBA505"},
		{time.Wednesday, "09:30", "MBA530"},
		{time.Wednesday, "12:30", "MBA550"},
		{time.Thursday, "08:00", "MBA500"},
		{time.Thursday, "09:30", "MBA520"},
		{time.Thursday, "12:30", "MBA548"},
		{time.Friday, "09:30", "MBA593R"},
	})
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return s
}

// Resolve maps a recording start time to the session it belongs to.
//
// Matching order:
//  1. a slot within the small tolerance of the raw start time (covers a
//     recorder started a few seconds early or late),
//  2. the most recent slot whose class period still contains the start
//     (covers a recording started partway into class).
//
// Classification uses only the start time; a recording that starts on a
// slot but runs long past the next quarter-hour stays with its start slot.
// The recording duration is accepted so callers resolve a file, not a bare
// timestamp, but it never shifts the match forward.
func (s *Schedule) Resolve(start time.Time, duration time.Duration) (Session, error) {
	day := start.Weekday()
	startMinute := start.Hour()*60 + start.Minute()

	// Tolerance pass: exact slots first. A slot at minute m matches when
	// the start is within tolerance of it, seconds included.
	for m := quantize(startMinute); m <= startMinute+1; m += 15 {
		code, ok := s.slots[slotKey{day, m}]
		if !ok {
			continue
		}
		slotTime := time.Date(start.Year(), start.Month(), start.Day(), m/60, m%60, 0, 0, start.Location())
		diff := start.Sub(slotTime)
		if diff < 0 {
			diff = -diff
		}
		if diff <= s.tolerance {
			return Session{ClassCode: code, Date: slotTime.Format("2006-01-02")}, nil
		}
	}

	// Containment pass: walk back quarter-hour buckets while still inside
	// the class period.
	for m := quantize(startMinute); m >= 0 && startMinute-m < int(s.slotLength/time.Minute); m -= 15 {
		if code, ok := s.slots[slotKey{day, m}]; ok {
			return Session{ClassCode: code, Date: start.Format("2006-01-02")}, nil
		}
	}

	return Session{}, ErrUnscheduled
}

func quantize(minute int) int {
	return minute - minute%15
}

// ParseRecordingTimestamp parses a recorder filename of the form
// YYYYMMDDHHMMSS.<ext> into the recording start time. The extension is
// ignored; the stem must be exactly fourteen digits encoding a valid
// date and time.
func ParseRecordingTimestamp(filename string) (time.Time, error) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if len(stem) != 14 {
		return time.Time{}, fmt.Errorf("filename %q does not match YYYYMMDDHHMMSS", filename)
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("filename %q does not match YYYYMMDDHHMMSS", filename)
		}
	}
	t, err := time.ParseInLocation("20060102150405", stem, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %q encodes an invalid timestamp: %v", filename, err)
	}
	return t, nil
}

// LooksLikeRecording reports whether a filename has the recorder's
// fourteen-digit stem shape, regardless of whether the digits encode a
// valid date. Files that do not look like recordings are ignored by the
// scanner; files that do but fail to parse are reported.
func LooksLikeRecording(filename string) bool {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if len(stem) != 14 {
		return false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
