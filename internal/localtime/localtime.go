// Package localtime answers scheduling questions about the normalized
// program: which zone the viewer should see, whether the convention is
// currently running, and how a zoned instant reads on the viewer's own
// wall clock.
package localtime

import (
	"sync"
	"time"

	appLog "conprog/internal/log"
	"conprog/internal/model"
)

// Prefs exposes the viewer's persisted time zone preference. The storage
// mechanics live elsewhere; the service only asks whether a manual zone was
// chosen and which one.
type Prefs interface {
	// UseSelectedZone reports whether the viewer opted into a manual zone.
	UseSelectedZone() bool
	// SelectedZone returns the manually chosen IANA zone name.
	SelectedZone() string
}

// slotKeyLayout is the canonical zoned-datetime string used as the time-slot
// cache key. Distinct start datetimes always yield distinct keys.
const slotKeyLayout = "2006-01-02T15:04:05-07:00"

type fmtKey struct {
	slot     int
	ampm     bool
	showZone bool
}

// Service owns every process-wide temporal cache: the resolved local zone,
// the time-slot index, and the per-slot formatted-string caches. All access
// is serialized with a mutex; concurrent writers would otherwise hand out
// duplicate slot indices.
type Service struct {
	convZone *time.Location
	zoneCode string
	prefs    Prefs
	now      func() time.Time

	mu         sync.Mutex
	localZone  *time.Location
	slots      map[string]int
	convCache  map[fmtKey]string
	localCache map[fmtKey]string
}

// New builds a Service for the given convention zone and abbreviation.
// prefs may be nil, in which case the runtime zone is always used.
func New(convZone *time.Location, zoneCode string, prefs Prefs) *Service {
	s := &Service{
		convZone:   convZone,
		zoneCode:   zoneCode,
		prefs:      prefs,
		now:        time.Now,
		slots:      make(map[string]int),
		convCache:  make(map[fmtKey]string),
		localCache: make(map[fmtKey]string),
	}
	s.localZone = s.resolve()
	return s
}

// ConventionZone returns the fixed convention zone.
func (s *Service) ConventionZone() *time.Location { return s.convZone }

// LocalZone returns the currently cached effective local zone.
func (s *Service) LocalZone() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localZone
}

// ResolveLocalZone recomputes the effective local zone from the preference
// accessors and caches it: the manually selected zone when the viewer opted
// in and the name loads, otherwise the runtime zone. The local-format cache
// is invalidated since its entries depend on the zone.
func (s *Service) ResolveLocalZone() *time.Location {
	zone := s.resolve()

	s.mu.Lock()
	defer s.mu.Unlock()
	if zone != s.localZone {
		s.localCache = make(map[fmtKey]string)
	}
	s.localZone = zone
	return zone
}

func (s *Service) resolve() *time.Location {
	if s.prefs != nil && s.prefs.UseSelectedZone() {
		if name := s.prefs.SelectedZone(); name != "" {
			loc, err := time.LoadLocation(name)
			if err == nil {
				return loc
			}
			appLog.Warn("selected time zone not loadable, using runtime zone", "zone", name)
		}
	}
	return time.Local
}

// SlotKey renders the canonical zoned-datetime string for t in the
// convention zone.
func (s *Service) SlotKey(t time.Time) string {
	return t.In(s.convZone).Format(slotKeyLayout)
}

// TimeSlot returns the stable integer index for a canonical zoned-datetime
// string, assigning the next sequential index on first sight. The mapping
// is append-only for the life of the process unless Reset is called.
func (s *Service) TimeSlot(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.slots[key]; ok {
		return idx
	}
	idx := len(s.slots)
	s.slots[key] = idx
	return idx
}

// Reset clears the time-slot index and both formatted-string caches.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]int)
	s.convCache = make(map[fmtKey]string)
	s.localCache = make(map[fmtKey]string)
}

// FormatTime renders t as a convention-zone wall-clock string. 12-hour mode
// appends a lowercase am/pm marker; showZone appends the configured
// convention zone abbreviation.
func (s *Service) FormatTime(t time.Time, ampm, showZone bool) string {
	out := formatClock(t.In(s.convZone), ampm)
	if showZone {
		out += " " + s.zoneCode
	}
	return out
}

// FormatTimeInSlot is FormatTime memoized per (slot, ampm, showZone).
func (s *Service) FormatTimeInSlot(slot int, t time.Time, ampm, showZone bool) string {
	key := fmtKey{slot: slot, ampm: ampm, showZone: showZone}

	s.mu.Lock()
	if cached, ok := s.convCache[key]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	out := s.FormatTime(t, ampm, showZone)

	s.mu.Lock()
	s.convCache[key] = out
	s.mu.Unlock()
	return out
}

// FormatLocalTime converts t into the resolved local zone and formats it.
// When the local calendar date of the instant differs from its
// convention-zone calendar date, a previous/next day qualifier is appended;
// the comparison is always date-vs-date between the two zone projections of
// the same instant, never against "today". Results are memoized per
// (slot, ampm, showZone).
func (s *Service) FormatLocalTime(slot int, t time.Time, ampm, showZone bool) string {
	key := fmtKey{slot: slot, ampm: ampm, showZone: showZone}

	s.mu.Lock()
	if cached, ok := s.localCache[key]; ok {
		s.mu.Unlock()
		return cached
	}
	local := s.localZone
	s.mu.Unlock()

	lt := t.In(local)
	out := formatClock(lt, ampm)
	if showZone {
		out += " " + lt.Format("MST")
	}

	switch compareDates(lt, t.In(s.convZone)) {
	case -1:
		out += " (previous day)"
	case 1:
		out += " (next day)"
	}

	s.mu.Lock()
	s.localCache[key] = out
	s.mu.Unlock()
	return out
}

// TimeZonesDiffer reports whether the convention zone and the resolved local
// zone disagree for the given ascending-sorted program. Zones that agree in
// UTC offset at the first item's start present identical wall clocks, so
// they do not count as differing. Empty input returns false.
func (s *Service) TimeZonesDiffer(items []model.ProgramItem) bool {
	if len(items) == 0 {
		return false
	}
	t := items[0].StartDateAndTime
	_, convOffset := t.In(s.convZone).Zone()
	_, localOffset := t.In(s.LocalZone()).Zone()
	return convOffset != localOffset
}

// IsDuringConvention reports whether "now" falls within the inclusive window
// from the first item's start to the last item's end. Items must already be
// sorted ascending by start. An empty program is never "during".
func (s *Service) IsDuringConvention(items []model.ProgramItem) bool {
	if len(items) == 0 {
		return false
	}
	now := s.now()
	first := items[0].StartDateAndTime
	last := items[len(items)-1].EndDateAndTime
	return !now.Before(first) && !now.After(last)
}

// FilterPastItems returns the items whose end is at or after "now". This is
// a point-in-time snapshot, not a live filter.
func (s *Service) FilterPastItems(items []model.ProgramItem) []model.ProgramItem {
	now := s.now()
	out := make([]model.ProgramItem, 0, len(items))
	for _, it := range items {
		if !it.EndDateAndTime.Before(now) {
			out = append(out, it)
		}
	}
	return out
}

// ISODate renders t's calendar date in the convention zone as YYYY-MM-DD.
func (s *Service) ISODate(t time.Time) string {
	return t.In(s.convZone).Format("2006-01-02")
}

// DayName renders t's weekday name in the convention zone.
func (s *Service) DayName(t time.Time) string {
	return t.In(s.convZone).Format("Monday")
}

func formatClock(t time.Time, ampm bool) string {
	if ampm {
		return t.Format("3:04pm")
	}
	return t.Format("15:04")
}

// compareDates orders two zone projections by calendar date only.
func compareDates(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	av := ay*10000 + int(am)*100 + ad
	bv := by*10000 + int(bm)*100 + bd
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}
