// Package program turns the raw program and people feeds into the
// normalized, cross-referenced, chronologically ordered dataset.
//
// The pipeline is fail-fast: a fetch, parse, or datetime failure aborts the
// whole refresh and no partial dataset is produced. The single exception is
// participant cross-linking, where an unresolved person reference is dropped
// silently.
package program

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"conprog/internal/config"
	"conprog/internal/jsonparse"
	"conprog/internal/localtime"
	appLog "conprog/internal/log"
	"conprog/internal/model"
)

// Normalizer executes the per-refresh normalization stages. It is not safe
// for concurrent use; each refresh runs the stages to completion on one
// goroutine.
type Normalizer struct {
	cfg   *config.Config
	times *localtime.Service
	conv  *time.Location
	col   *collate.Collator
}

// NewNormalizer builds a Normalizer around the given temporal service. The
// configured locale drives name collation; an unknown locale degrades to
// root collation rules.
func NewNormalizer(cfg *config.Config, times *localtime.Service) *Normalizer {
	return &Normalizer{
		cfg:   cfg,
		times: times,
		conv:  times.ConventionZone(),
		col:   collate.New(language.Make(cfg.Locale), collate.IgnoreCase),
	}
}

// builtItem pairs a normalized item with its not-yet-resolved people refs.
type builtItem struct {
	item model.ProgramItem
	refs []rawPersonRef
}

// BuildDataset runs the full pipeline over raw feed text and returns the
// normalized dataset.
func (n *Normalizer) BuildDataset(programText, peopleText string) (*model.Dataset, error) {
	rawItems, err := decodeRecords[rawItem](programText, "program")
	if err != nil {
		return nil, err
	}
	rawPeople, err := decodeRecords[rawPerson](peopleText, "people")
	if err != nil {
		return nil, err
	}

	people := n.ProcessPeopleData(rawPeople)

	built, err := n.ProcessProgramData(rawItems)
	if err != nil {
		return nil, err
	}
	items := n.addParticipantDetails(built, people)

	var dayTags []model.Tag
	if n.cfg.Tags.DayTag.Generate {
		items, dayTags = n.synthesizeDayTags(items)
	}

	locations := ProcessLocations(items)

	itemTags := make([][]model.Tag, len(items))
	for i := range items {
		itemTags[i] = items[i].Tags
	}
	personTags := make([][]model.Tag, len(people))
	for i := range people {
		personTags[i] = people[i].Tags
	}

	ds := &model.Dataset{
		ID:          newDatasetID(),
		GeneratedAt: time.Now(),
		Items:       items,
		People:      people,
		Locations:   locations,
		Tags:        buildTaxonomy(itemTags, n.cfg.Tags),
		PeopleTags:  buildTaxonomy(personTags, n.cfg.PeopleTags),
	}

	appLog.Info("dataset built",
		"dataset", ds.ID,
		"items", len(ds.Items),
		"people", len(ds.People),
		"locations", len(ds.Locations),
		"days", len(dayTags),
	)
	return ds, nil
}

// decodeRecords extracts every JSON document from the feed text and decodes
// each as an array of records, concatenated in document order.
func decodeRecords[T any](text, feed string) ([]T, error) {
	docs, err := jsonparse.ExtractDocuments(text)
	if err != nil {
		return nil, err
	}

	var out []T
	for _, doc := range docs {
		var chunk []T
		if err := json.Unmarshal(doc, &chunk); err != nil {
			return nil, &jsonparse.ParseError{
				Err: fmt.Errorf("%s feed document is not an array of records: %w", feed, err),
			}
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// ProcessProgramData derives every temporal field for the raw items and
// returns them sorted ascending by start. The sort is stable, so items
// sharing a start keep their feed order, and item order is fixed from here
// on. Tag synthesis from the format field and named links also happens here,
// as pure folds over fresh slices.
func (n *Normalizer) ProcessProgramData(raw []rawItem) ([]builtItem, error) {
	pre := time.Duration(n.cfg.PreBufferMins) * time.Minute
	post := time.Duration(n.cfg.PostBufferMins) * time.Minute

	out := make([]builtItem, 0, len(raw))
	for _, ri := range raw {
		start, err := n.processDateAndTime(ri)
		if err != nil {
			return nil, err
		}

		mins := int(ri.Mins)
		if mins <= 0 {
			mins = n.cfg.DefaultDurationMins
		}
		end := start.Add(time.Duration(mins) * time.Minute)

		tags := normalizeTags(ri.Tags)
		if n.cfg.Tags.FormatAsTag {
			tags = SynthesizeFormatTag(tags, ri.Format)
		}
		tags = SynthesizeLinkTags(tags, ri.Links, n.cfg.Links)

		item := model.ProgramItem{
			ID:    string(ri.ID),
			Title: ri.Title,
			Desc:  ri.Desc,
			Loc:   []string(ri.Loc),
			Tags:  tags,
			Links: ri.Links,

			StartDateAndTime:         start,
			EndDateAndTime:           end,
			BufferedStartDateAndTime: start.Add(-pre),
			BufferedEndDateAndTime:   end.Add(post),

			DurationMins: mins,
		}
		out = append(out, builtItem{item: item, refs: ri.People})
	}

	slices.SortStableFunc(out, func(a, b builtItem) int {
		return a.item.StartDateAndTime.Compare(b.item.StartDateAndTime)
	})

	// Slots are assigned after the sort, so within one session the earliest
	// distinct start owns slot 0 and indices ascend chronologically.
	for i := range out {
		it := &out[i].item
		it.TimeSlot = n.times.TimeSlot(n.times.SlotKey(it.StartDateAndTime))
	}
	return out, nil
}

// ProcessPeopleData normalizes raw person records into the canonical shape
// and sorts them ascending by sortname using locale-aware collation.
func (n *Normalizer) ProcessPeopleData(raw []rawPerson) []model.Person {
	out := make([]model.Person, 0, len(raw))
	for _, rp := range raw {
		name := rp.Name.Display()
		sortname := rp.Sortname
		if sortname == "" {
			sortname = rp.Name.Sortname()
		}

		out = append(out, model.Person{
			ID:       string(rp.ID),
			Name:     name,
			Sortname: sortname,
			URI:      slugify(name),
			Img:      personImage(rp),
			Tags:     normalizeTags(rp.Tags),
		})
	}

	slices.SortStableFunc(out, func(a, b model.Person) int {
		return n.col.CompareString(a.Sortname, b.Sortname)
	})
	return out
}

// addParticipantDetails resolves each item's people references against the
// normalized people table. Unresolved references are dropped silently; a
// moderator is detected from an explicit role flag or a "(moderator)"
// suffix on the raw inline name. The item's resolved people are sorted by
// sortname; item order itself is never touched.
func (n *Normalizer) addParticipantDetails(built []builtItem, people []model.Person) []model.ProgramItem {
	byID := make(map[string]model.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	items := make([]model.ProgramItem, 0, len(built))
	for _, b := range built {
		it := b.item

		resolved := make([]model.Person, 0, len(b.refs))
		for _, ref := range b.refs {
			p, ok := byID[string(ref.ID)]
			if !ok {
				appLog.Debug("dropping unresolved participant", "item", it.ID, "person", string(ref.ID))
				continue
			}
			if isModeratorRef(ref) {
				it.ModeratorID = p.ID
			}
			resolved = append(resolved, p)
		}

		slices.SortStableFunc(resolved, func(a, b model.Person) int {
			return n.col.CompareString(a.Sortname, b.Sortname)
		})
		if len(resolved) > 0 {
			it.People = resolved
		}
		items = append(items, it)
	}
	return items
}

func isModeratorRef(ref rawPersonRef) bool {
	if strings.EqualFold(ref.Role, "moderator") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(ref.Name)), "(moderator)")
}

// ProcessLocations unions every loc value across the program, deduplicates,
// and sorts alphabetically by value. Label defaults to value.
func ProcessLocations(items []model.ProgramItem) []model.Location {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, it := range items {
		for _, l := range it.Loc {
			if l == "" || seen[l] {
				continue
			}
			seen[l] = true
			values = append(values, l)
		}
	}
	slices.Sort(values)

	out := make([]model.Location, len(values))
	for i, v := range values {
		out[i] = model.Location{Value: v, Label: v}
	}
	return out
}

func slugify(name string) string {
	return url.PathEscape(strings.ReplaceAll(name, " ", "_"))
}

// personImage picks the thumbnail in priority order: explicit image link,
// photo link, numeric-thumbnail URL field. Nil means no image.
func personImage(rp rawPerson) *string {
	for _, candidate := range []string{rp.Links["img"], rp.Links["photo"], rp.Image256} {
		if candidate != "" {
			c := candidate
			return &c
		}
	}
	return nil
}
