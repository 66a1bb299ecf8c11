// Package ics publishes the normalized program as an iCalendar feed, so the
// schedule can be subscribed to from any calendar client.
package ics

import (
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"

	"conprog/internal/model"
)

const prodID = "-//conprog//program feed//EN"

// Export renders the program items as a VCALENDAR. Times are emitted as the
// zoned instants carried by the items; participants are listed at the end of
// the description. uidDomain qualifies event UIDs (e.g. the serving host).
func Export(items []model.ProgramItem, uidDomain string) string {
	if uidDomain == "" {
		uidDomain = "conprog"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, it := range items {
		ev := cal.AddEvent(fmt.Sprintf("%s@%s", it.ID, uidDomain))
		ev.SetDtStampTime(it.StartDateAndTime)
		ev.SetStartAt(it.StartDateAndTime)
		ev.SetEndAt(it.EndDateAndTime)
		ev.SetSummary(it.Title)

		if desc := eventDescription(it); desc != "" {
			ev.SetDescription(desc)
		}
		if len(it.Loc) > 0 {
			ev.SetLocation(strings.Join(it.Loc, ", "))
		}
	}

	return cal.Serialize()
}

func eventDescription(it model.ProgramItem) string {
	var parts []string
	if it.Desc != "" {
		parts = append(parts, it.Desc)
	}
	if len(it.People) > 0 {
		names := make([]string, 0, len(it.People))
		for _, p := range it.People {
			name := p.Name
			if p.ID == it.ModeratorID {
				name += " (moderator)"
			}
			names = append(names, name)
		}
		parts = append(parts, "With: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, "\n\n")
}
