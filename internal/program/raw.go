package program

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The feeds are loosely shaped: ids arrive as strings or numbers, names as
// strings or [first, last] arrays, locations as a string or an array, tags
// as "category:value" strings or {value,label,category} objects. Each shape
// is decoded exactly once here, at the model boundary; downstream stages
// never re-inspect raw shapes.

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexStrings accepts a JSON string or an array of strings.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var ss []string
		if err := json.Unmarshal(b, &ss); err != nil {
			return err
		}
		*f = ss
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*f = flexStrings{s}
	return nil
}

// flexMinutes accepts a JSON number or a numeric string. Zero means the
// feed supplied no usable duration.
type flexMinutes int

func (f *flexMinutes) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexMinutes(int(v))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexMinutes(int(v))
	return nil
}

// rawName accepts a display string or a [first, ..., last] array.
type rawName struct {
	parts   []string
	isArray bool
}

func (n *rawName) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = rawName{}
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var parts []string
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		*n = rawName{parts: parts, isArray: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*n = rawName{parts: []string{s}}
	return nil
}

// Display joins an array name with spaces ("First Last") and returns a
// string name as-is.
func (n rawName) Display() string {
	return strings.Join(n.parts, " ")
}

// Sortname reverses an array name ("Last First"); a plain string name is
// not splittable and falls back to itself.
func (n rawName) Sortname() string {
	if !n.isArray || len(n.parts) < 2 {
		return n.Display()
	}
	reversed := make([]string, 0, len(n.parts))
	for i := len(n.parts) - 1; i >= 0; i-- {
		reversed = append(reversed, n.parts[i])
	}
	return strings.Join(reversed, " ")
}

// rawTag accepts a "category:value" string or a structured tag object.
// For the string form only Raw is set.
type rawTag struct {
	Raw      string
	Value    string
	Label    string
	Category string
}

func (t *rawTag) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = rawTag{Raw: s}
		return nil
	}
	var obj struct {
		Value    string `json:"value"`
		Label    string `json:"label"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*t = rawTag{Value: obj.Value, Label: obj.Label, Category: obj.Category}
	return nil
}

// rawPersonRef is an item's pointer at a person: at least an id, possibly a
// role flag or an inline display name carrying a "(moderator)" suffix.
type rawPersonRef struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
	Role string     `json:"role"`
}

// rawItem is one program feed record as published.
type rawItem struct {
	ID       flexString        `json:"id"`
	Title    string            `json:"title"`
	Desc     string            `json:"desc"`
	Date     string            `json:"date"`
	Time     string            `json:"time"`
	Datetime string            `json:"datetime"`
	Mins     flexMinutes       `json:"mins"`
	Loc      flexStrings       `json:"loc"`
	Tags     []rawTag          `json:"tags"`
	People   []rawPersonRef    `json:"people"`
	Format   string            `json:"format"`
	Links    map[string]string `json:"links"`
}

// rawPerson is one people feed record as published.
type rawPerson struct {
	ID       flexString        `json:"id"`
	Name     rawName           `json:"name"`
	Sortname string            `json:"sortname"`
	Tags     []rawTag          `json:"tags"`
	Links    map[string]string `json:"links"`
	Image256 string            `json:"image_256_url"`
}
