package program

import (
	"slices"
	"strings"

	"conprog/internal/config"
	"conprog/internal/format"
	"conprog/internal/model"
)

// DayCategory is the synthesized tag category keyed by each item's calendar
// date in the convention zone.
const DayCategory = "days"

// splitTag splits a raw "category:value" string at the first colon; any
// further colons belong to the value. A string without a colon has no
// category.
func splitTag(s string) (category, value string) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// normalizeTag converts one raw feed tag into the canonical form. String
// tags keep the full raw string as their value (that is what items carry and
// filters match on) and take their label from the portion after the first
// colon; structured tags pass through, with a formatted fallback label.
func normalizeTag(rt rawTag) model.Tag {
	if rt.Raw != "" {
		category, value := splitTag(rt.Raw)
		return model.Tag{Category: category, Value: rt.Raw, Label: format.Tag(value)}
	}
	label := rt.Label
	if label == "" {
		label = format.Tag(rt.Value)
	}
	return model.Tag{Category: rt.Category, Value: rt.Value, Label: label}
}

func normalizeTags(raw []rawTag) []model.Tag {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.Tag, 0, len(raw))
	for _, rt := range raw {
		out = append(out, normalizeTag(rt))
	}
	return out
}

// appendRawTag appends the tag parsed from raw unless a tag with the same
// value is already present. It never mutates its input, so synthesis passes
// stay idempotent even if run twice.
func appendRawTag(tags []model.Tag, raw string) []model.Tag {
	for _, t := range tags {
		if t.Value == raw {
			return tags
		}
	}
	out := make([]model.Tag, len(tags), len(tags)+1)
	copy(out, tags)
	rt := rawTag{Raw: raw}
	return append(out, normalizeTag(rt))
}

// SynthesizeFormatTag converts a raw "format" feed field into a
// type:<format> tag. Items without a format pass through unchanged.
func SynthesizeFormatTag(tags []model.Tag, itemFormat string) []model.Tag {
	if itemFormat == "" {
		return tags
	}
	return appendRawTag(tags, "type:"+itemFormat)
}

// SynthesizeLinkTags converts the presence of configured named links into
// tags. Links whose config carries no tag are display-only.
func SynthesizeLinkTags(tags []model.Tag, links map[string]string, cfg []config.LinkConfig) []model.Tag {
	if len(links) == 0 {
		return tags
	}
	out := tags
	for _, lc := range cfg {
		if lc.Tag == "" {
			continue
		}
		if _, ok := links[lc.Name]; ok {
			out = appendRawTag(out, lc.Tag)
		}
	}
	return out
}

// synthesizeDayTags appends a "days" tag to every item, keyed by the item's
// own convention-zone calendar date. Items must already be sorted ascending
// by start, so first appearance order is chronological and a date's position
// in the returned list is its day index.
func (n *Normalizer) synthesizeDayTags(items []model.ProgramItem) ([]model.ProgramItem, []model.Tag) {
	var dayTags []model.Tag
	seen := make(map[string]model.Tag)

	out := make([]model.ProgramItem, len(items))
	for i, it := range items {
		iso := n.times.ISODate(it.StartDateAndTime)
		tag, ok := seen[iso]
		if !ok {
			tag = model.Tag{Category: DayCategory, Value: iso, Label: n.times.DayName(it.StartDateAndTime)}
			seen[iso] = tag
			dayTags = append(dayTags, tag)
		}

		withDay := make([]model.Tag, len(it.Tags), len(it.Tags)+1)
		copy(withDay, it.Tags)
		it.Tags = append(withDay, tag)
		out[i] = it
	}
	return out, dayTags
}

// buildTaxonomy groups tags by category with per-category deduplication by
// value, sorts every category list by label, and builds the value->record
// index. The "days" category is exempt from label sorting; its insertion
// order (chronological first appearance) is meaningful. Categories declared
// in the config are present even when empty.
func buildTaxonomy(lists [][]model.Tag, tc config.TagsConfig) model.Taxonomy {
	tax := model.Taxonomy{
		ByCategory: make(map[string][]model.Tag),
		All:        make(map[string]model.Tag),
	}
	for _, c := range tc.Separate {
		tax.ByCategory[c.Prefix] = []model.Tag{}
	}

	seen := make(map[string]map[string]bool)
	for _, tags := range lists {
		for _, t := range tags {
			if _, ok := tax.All[t.Value]; !ok {
				tax.All[t.Value] = t
			}
			if t.Category == "" {
				continue
			}
			if seen[t.Category] == nil {
				seen[t.Category] = make(map[string]bool)
			}
			if seen[t.Category][t.Value] {
				continue
			}
			seen[t.Category][t.Value] = true
			tax.ByCategory[t.Category] = append(tax.ByCategory[t.Category], t)
		}
	}

	for category, list := range tax.ByCategory {
		if category == DayCategory {
			continue
		}
		slices.SortFunc(list, func(a, b model.Tag) int {
			return strings.Compare(a.Label, b.Label)
		})
		tax.ByCategory[category] = list
	}

	return tax
}
