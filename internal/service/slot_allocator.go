package service

import (
	"errors"
	"fmt"
	"time"
)

// SlotTimeLayout is the wire format for slot timestamps.
const SlotTimeLayout = "2006-01-02 15:04:05"

const clockLayout = "15:04"

var ErrInvalidClinicHours = errors.New("invalid clinic hours")

// SlotAllocator enumerates bookable appointment starts for one doctor on one
// calendar day. It is pure: the caller supplies the existing appointments.
type SlotAllocator struct {
	loc   *time.Location
	open  time.Duration
	close time.Duration
	step  time.Duration
}

// NewSlotAllocator takes HH:MM open and close times interpreted in loc.
// The last slot starts at close - step.
func NewSlotAllocator(loc *time.Location, open, close string, step time.Duration) (*SlotAllocator, error) {
	openAt, err := parseClock(open)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q", ErrInvalidClinicHours, open)
	}
	closeAt, err := parseClock(close)
	if err != nil {
		return nil, fmt.Errorf("%w: close %q", ErrInvalidClinicHours, close)
	}
	if step <= 0 || closeAt-openAt < step {
		return nil, fmt.Errorf("%w: %s-%s every %s", ErrInvalidClinicHours, open, close, step)
	}
	if loc == nil {
		loc = time.UTC
	}

	return &SlotAllocator{loc: loc, open: openAt, close: closeAt, step: step}, nil
}

func (a *SlotAllocator) Location() *time.Location {
	return a.loc
}

// DayBounds returns [start of day, start of next day) for date in the clinic location.
func (a *SlotAllocator) DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.In(a.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, a.loc)
	return start, start.AddDate(0, 0, 1)
}

// Boundaries lists every slot start of the day, booked or not. Slots are
// wall-clock times, so a daylight saving change does not shift the grid.
func (a *SlotAllocator) Boundaries(date time.Time) []time.Time {
	y, m, d := date.In(a.loc).Date()
	slots := make([]time.Time, 0, int((a.close-a.open)/a.step))
	for offset := a.open; offset+a.step <= a.close; offset += a.step {
		hour := int(offset / time.Hour)
		minute := int((offset % time.Hour) / time.Minute)
		slots = append(slots, time.Date(y, m, d, hour, minute, 0, 0, a.loc))
	}
	return slots
}

// Available drops every boundary whose HH:MM matches one of the booked times
// on the same calendar date. Seconds and source time zone are ignored.
func (a *SlotAllocator) Available(date time.Time, booked []time.Time) []time.Time {
	day := date.In(a.loc).Format("2006-01-02")
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		local := b.In(a.loc)
		if local.Format("2006-01-02") != day {
			continue
		}
		taken[local.Format(clockLayout)] = struct{}{}
	}

	available := make([]time.Time, 0)
	for _, slot := range a.Boundaries(date) {
		if _, ok := taken[slot.Format(clockLayout)]; ok {
			continue
		}
		available = append(available, slot)
	}
	return available
}

// Format renders a slot in the clinic location.
func (a *SlotAllocator) Format(t time.Time) string {
	return t.In(a.loc).Format(SlotTimeLayout)
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
