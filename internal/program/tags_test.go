package program

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conprog/internal/config"
	"conprog/internal/model"
)

func TestSplitTag(t *testing.T) {
	tests := []struct {
		input    string
		category string
		value    string
	}{
		{input: "type:panel", category: "type", value: "panel"},
		{input: "first:second:third", category: "first", value: "second:third"},
		{input: "nocolon", category: "", value: "nocolon"},
		{input: ":leading", category: "", value: "leading"},
		{input: "trailing:", category: "trailing", value: ""},
	}
	for _, tt := range tests {
		category, value := splitTag(tt.input)
		assert.Equal(t, tt.category, category, "input %q", tt.input)
		assert.Equal(t, tt.value, value, "input %q", tt.input)
	}
}

func TestNormalizeTag(t *testing.T) {
	t.Run("string tag keeps the raw value", func(t *testing.T) {
		got := normalizeTag(rawTag{Raw: "track:Young Adult"})
		assert.Equal(t, model.Tag{Category: "track", Value: "track:Young Adult", Label: "Young Adult"}, got)
	})

	t.Run("string tag formats a nested label", func(t *testing.T) {
		got := normalizeTag(rawTag{Raw: "first:second:third"})
		assert.Equal(t, model.Tag{Category: "first", Value: "first:second:third", Label: "Second: third"}, got)
	})

	t.Run("structured tag passes through", func(t *testing.T) {
		got := normalizeTag(rawTag{Value: "panel", Label: "Panel Discussion", Category: "type"})
		assert.Equal(t, model.Tag{Category: "type", Value: "panel", Label: "Panel Discussion"}, got)
	})

	t.Run("structured tag without a label gets a formatted one", func(t *testing.T) {
		got := normalizeTag(rawTag{Value: "panel", Category: "type"})
		assert.Equal(t, "panel", got.Label)
	})
}

func TestSynthesizeFormatTag(t *testing.T) {
	base := []model.Tag{{Category: "track", Value: "track:Books", Label: "Books"}}

	t.Run("empty format passes through untouched", func(t *testing.T) {
		got := SynthesizeFormatTag(base, "")
		assert.Equal(t, base, got)
	})

	t.Run("format becomes a type tag", func(t *testing.T) {
		got := SynthesizeFormatTag(base, "Panel")
		require.Len(t, got, 2)
		assert.Equal(t, model.Tag{Category: "type", Value: "type:Panel", Label: "Panel"}, got[1])
		assert.Len(t, base, 1, "input slice is never mutated")
	})

	t.Run("idempotent", func(t *testing.T) {
		once := SynthesizeFormatTag(base, "Panel")
		twice := SynthesizeFormatTag(once, "Panel")
		assert.Equal(t, once, twice)
	})
}

func TestSynthesizeLinkTags(t *testing.T) {
	cfg := []config.LinkConfig{
		{Name: "video", Text: "Video", Tag: "type:video"},
		{Name: "signup", Text: "Sign up"},
	}

	t.Run("no links passes through untouched", func(t *testing.T) {
		base := []model.Tag{{Value: "x"}}
		assert.Equal(t, base, SynthesizeLinkTags(base, nil, cfg))
	})

	t.Run("only tagged link names synthesize", func(t *testing.T) {
		links := map[string]string{"video": "https://x/v", "signup": "https://x/s", "other": "https://x/o"}
		got := SynthesizeLinkTags(nil, links, cfg)
		require.Len(t, got, 1)
		assert.Equal(t, "type:video", got[0].Value)
	})

	t.Run("idempotent", func(t *testing.T) {
		links := map[string]string{"video": "https://x/v"}
		once := SynthesizeLinkTags(nil, links, cfg)
		twice := SynthesizeLinkTags(once, links, cfg)
		assert.Equal(t, once, twice)
	})
}

func TestSynthesizeDayTags(t *testing.T) {
	n := newTestNormalizer(t, nil)

	mk := func(id string, start time.Time) model.ProgramItem {
		return model.ProgramItem{ID: id, StartDateAndTime: start}
	}
	items := []model.ProgramItem{
		mk("a", time.Date(2026, 1, 15, 10, 0, 0, 0, n.conv)),
		mk("b", time.Date(2026, 1, 15, 15, 0, 0, 0, n.conv)),
		mk("c", time.Date(2026, 1, 16, 10, 0, 0, 0, n.conv)),
	}

	out, days := n.synthesizeDayTags(items)

	require.Len(t, days, 2)
	assert.Equal(t, model.Tag{Category: DayCategory, Value: "2026-01-15", Label: "Thursday"}, days[0])
	assert.Equal(t, model.Tag{Category: DayCategory, Value: "2026-01-16", Label: "Friday"}, days[1])

	require.Len(t, out, 3)
	for i, wantDate := range []string{"2026-01-15", "2026-01-15", "2026-01-16"} {
		tags := out[i].Tags
		require.NotEmpty(t, tags)
		assert.Equal(t, wantDate, tags[len(tags)-1].Value)
	}
	assert.Empty(t, items[0].Tags, "input items are never mutated")
}

func TestBuildTaxonomy(t *testing.T) {
	tc := config.TagsConfig{Separate: []config.TagCategory{{Prefix: "type"}, {Prefix: "track"}}}

	lists := [][]model.Tag{
		{
			{Category: "track", Value: "track:Books", Label: "Books"},
			{Category: "track", Value: "track:Art", Label: "Art"},
			{Category: "", Value: "loose", Label: "loose"},
		},
		{
			{Category: "track", Value: "track:Books", Label: "Books"},
			{Category: DayCategory, Value: "2026-01-16", Label: "Friday"},
			{Category: DayCategory, Value: "2026-01-15", Label: "Thursday"},
		},
	}

	tax := buildTaxonomy(lists, tc)

	tracks := tax.ByCategory["track"]
	require.Len(t, tracks, 2, "duplicate values collapse")
	assert.Equal(t, "track:Art", tracks[0].Value, "categories sort by label")
	assert.Equal(t, "track:Books", tracks[1].Value)

	days := tax.ByCategory[DayCategory]
	require.Len(t, days, 2)
	assert.Equal(t, "2026-01-16", days[0].Value, "day category keeps insertion order")
	assert.Equal(t, "2026-01-15", days[1].Value)

	assert.Empty(t, tax.ByCategory["type"], "declared categories exist even when empty")
	assert.NotContains(t, tax.ByCategory, "", "uncategorized tags get no group")

	assert.Contains(t, tax.All, "loose")
	assert.Contains(t, tax.All, "track:Art")
	assert.Len(t, tax.All, 5)
}
