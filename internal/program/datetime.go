package program

import (
	"errors"
	"time"
)

// The feeds describe an item's start in one of three shapes:
//
//   - a {date, time} pair ("2026-01-15" + "10:00:00"), convention wall clock
//   - a datetime string with a Z suffix or an explicit numeric offset
//   - a naive datetime string, interpreted as convention wall clock
//
// Fractional seconds are accepted in any datetime form. Whatever the shape,
// the result is the same zoned instant expressed in the convention zone.

const (
	pairLayout       = "2006-01-02T15:04:05"
	pairShortLayout  = "2006-01-02T15:04"
	offsetLayout     = "2006-01-02T15:04:05Z07:00"
	naiveLayout      = "2006-01-02T15:04:05"
	naiveShortLayout = "2006-01-02T15:04"
)

// processDateAndTime derives the canonical start datetime for one raw item.
// The shape is decided here, once; downstream stages only ever see the
// resulting time.Time in the convention zone.
func (n *Normalizer) processDateAndTime(it rawItem) (time.Time, error) {
	switch {
	case it.Date != "" && it.Time != "":
		combined := it.Date + "T" + it.Time
		for _, layout := range []string{pairLayout, pairShortLayout} {
			if t, err := time.ParseInLocation(layout, combined, n.conv); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &DateParseError{
			ItemID: string(it.ID),
			Value:  combined,
			Err:    errors.New("date/time pair does not match YYYY-MM-DD / HH:MM[:SS]"),
		}

	case it.Datetime != "":
		// Zoned form first: Z suffix or explicit offset. time.Parse accepts
		// fractional seconds after the seconds field without a layout hint.
		if t, err := time.Parse(offsetLayout, it.Datetime); err == nil {
			return t.In(n.conv), nil
		}
		// Naive form: convention-zone wall clock.
		for _, layout := range []string{naiveLayout, naiveShortLayout} {
			if t, err := time.ParseInLocation(layout, it.Datetime, n.conv); err == nil {
				return t, nil
			}
		}
		return time.Time{}, &DateParseError{
			ItemID: string(it.ID),
			Value:  it.Datetime,
			Err:    errors.New("datetime matches neither zoned nor naive ISO form"),
		}
	}

	return time.Time{}, &DateParseError{
		ItemID: string(it.ID),
		Err:    errors.New("record carries neither a date/time pair nor a datetime"),
	}
}
