package program

import "fmt"

// FetchError reports a transport failure for one of the feed endpoints.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("program: fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("program: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DateParseError reports a program record whose date/time fields could not
// be normalized under any of the accepted shapes.
type DateParseError struct {
	ItemID string
	Value  string
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("program: item %q: cannot derive datetime from %q: %v", e.ItemID, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
