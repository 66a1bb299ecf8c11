package program

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conprog/internal/config"
	"conprog/internal/localtime"
)

func newTestNormalizer(t *testing.T, mutate func(*config.Config)) *Normalizer {
	t.Helper()
	zone, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	times := localtime.New(zone, cfg.TimezoneCode, nil)
	return NewNormalizer(cfg, times)
}

func TestProcessDateAndTimeShapes(t *testing.T) {
	n := newTestNormalizer(t, nil)

	// All of these describe 10:00 Berlin wall clock on 2026-01-15 (CET, +01:00).
	want := time.Date(2026, 1, 15, 10, 0, 0, 0, n.conv)

	tests := []struct {
		name string
		item rawItem
	}{
		{name: "date and time pair", item: rawItem{Date: "2026-01-15", Time: "10:00:00"}},
		{name: "date and short time pair", item: rawItem{Date: "2026-01-15", Time: "10:00"}},
		{name: "naive datetime", item: rawItem{Datetime: "2026-01-15T10:00:00"}},
		{name: "naive short datetime", item: rawItem{Datetime: "2026-01-15T10:00"}},
		{name: "utc datetime", item: rawItem{Datetime: "2026-01-15T09:00:00Z"}},
		{name: "offset datetime", item: rawItem{Datetime: "2026-01-15T10:00:00+01:00"}},
		{name: "other offset same instant", item: rawItem{Datetime: "2026-01-15T04:00:00-05:00"}},
		{name: "fractional seconds", item: rawItem{Datetime: "2026-01-15T09:00:00.000Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.processDateAndTime(tt.item)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestProcessDateAndTimeErrors(t *testing.T) {
	n := newTestNormalizer(t, nil)

	tests := []struct {
		name string
		item rawItem
	}{
		{name: "no temporal fields at all", item: rawItem{ID: "x"}},
		{name: "date without time", item: rawItem{ID: "x", Date: "2026-01-15"}},
		{name: "unparseable pair", item: rawItem{ID: "x", Date: "01/15/2026", Time: "10:00"}},
		{name: "unparseable datetime", item: rawItem{ID: "x", Datetime: "next thursday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.processDateAndTime(tt.item)
			require.Error(t, err)

			var derr *DateParseError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, "x", derr.ItemID)
		})
	}
}
