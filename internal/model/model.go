// Package model holds the canonical in-memory types produced by a refresh.
// Everything here is built fresh from one feed snapshot and never mutated
// after normalization completes.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Tag is one normalized tag on a program item or person.
// Value is the raw feed value used for matching; Label is the display form.
type Tag struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Label    string `json:"label"`
}

// Location is a deduplicated room/place entry. Label defaults to Value.
type Location struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Person is a normalized participant record.
type Person struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sortname string  `json:"sortname"`
	URI      string  `json:"uri"`
	Img      *string `json:"img"`
	Tags     []Tag   `json:"tags,omitempty"`
}

// ProgramItem is a normalized schedule entry in the convention time zone.
type ProgramItem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Desc        string            `json:"desc,omitempty"`
	Loc         []string          `json:"loc,omitempty"`
	Tags        []Tag             `json:"tags,omitempty"`
	People      []Person          `json:"people,omitempty"`
	ModeratorID string            `json:"moderatorId,omitempty"`
	Links       map[string]string `json:"links,omitempty"`

	StartDateAndTime         time.Time `json:"startDateAndTime"`
	EndDateAndTime           time.Time `json:"endDateAndTime"`
	BufferedStartDateAndTime time.Time `json:"bufferedStartDateAndTime"`
	BufferedEndDateAndTime   time.Time `json:"bufferedEndDateAndTime"`

	TimeSlot     int `json:"timeSlot"`
	DurationMins int `json:"durationMins"`
}

// Taxonomy groups tags by category and indexes every tag by its raw value.
// Category lists are deduplicated and label-sorted, except the synthesized
// "days" category which stays in chronological order (a tag's position in
// that list is its day index).
type Taxonomy struct {
	ByCategory map[string][]Tag `json:"byCategory"`
	All        map[string]Tag   `json:"all"`
}

// Dataset is the complete normalized output of one refresh.
type Dataset struct {
	ID          uuid.UUID     `json:"id"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Items       []ProgramItem `json:"items"`
	People      []Person      `json:"people"`
	Locations   []Location    `json:"locations"`
	Tags        Taxonomy      `json:"tags"`
	PeopleTags  Taxonomy      `json:"peopleTags"`
}
