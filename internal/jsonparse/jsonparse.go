// Package jsonparse extracts strict JSON documents from a tolerant text blob.
//
// Program and people feeds are published as one or more concatenated JSON
// documents, optionally interleaved with // line comments, /* block comments */
// and arbitrary whitespace. ExtractDocuments isolates each top-level document,
// strips comments that appear outside string literals, and validates the
// result with the standard JSON parser.
package jsonparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a document that could not be isolated or parsed.
// Offset is the byte position in the input blob where the failure began.
type ParseError struct {
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonparse: invalid document at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractDocuments scans text left to right and returns every top-level JSON
// document, in input order. Whitespace and comments between documents are
// skipped. Any document that is not valid JSON aborts the whole extraction;
// there is no partial-document recovery. Blank input yields an empty slice.
func ExtractDocuments(text string) ([]json.RawMessage, error) {
	docs := make([]json.RawMessage, 0, 2)
	i := 0
	n := len(text)

	for i < n {
		c := text[i]
		switch {
		case isSpace(c):
			i++

		case c == '/' && i+1 < n && text[i+1] == '/':
			i = skipLineComment(text, i)

		case c == '/' && i+1 < n && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return nil, &ParseError{Offset: i, Err: errors.New("unterminated block comment")}
			}
			i += 2 + end + 2

		case c == '{' || c == '[':
			doc, next, err := scanDocument(text, i)
			if err != nil {
				return nil, err
			}
			var v any
			if uerr := json.Unmarshal([]byte(doc), &v); uerr != nil {
				return nil, &ParseError{Offset: i, Err: uerr}
			}
			docs = append(docs, json.RawMessage(doc))
			i = next

		default:
			return nil, &ParseError{Offset: i, Err: fmt.Errorf("unexpected character %q outside document", c)}
		}
	}

	return docs, nil
}

// scanDocument isolates one balanced {...} or [...] starting at start.
// It counts nested braces/brackets, tracks in-string state so that structural
// characters and comment markers inside string values (including escaped
// quotes) stay inert, and drops comments found between tokens. The returned
// string is the document with comments removed, ready for strict parsing.
func scanDocument(text string, start int) (string, int, error) {
	var b strings.Builder
	depth := 0
	inString := false
	escaped := false

	i := start
	for i < len(text) {
		c := text[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}

		switch c {
		case '"':
			inString = true
			b.WriteByte(c)
			i++
		case '{', '[':
			depth++
			b.WriteByte(c)
			i++
		case '}', ']':
			depth--
			b.WriteByte(c)
			i++
			if depth == 0 {
				return b.String(), i, nil
			}
		case '/':
			switch {
			case i+1 < len(text) && text[i+1] == '/':
				i = skipLineComment(text, i)
			case i+1 < len(text) && text[i+1] == '*':
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return "", 0, &ParseError{Offset: i, Err: errors.New("unterminated block comment")}
				}
				i += 2 + end + 2
			default:
				b.WriteByte(c)
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}

	return "", 0, &ParseError{Offset: start, Err: errors.New("unterminated document")}
}

// skipLineComment advances past a // comment. The terminating \n or \r is
// left in place for the caller's whitespace handling.
func skipLineComment(text string, i int) int {
	for i < len(text) && text[i] != '\n' && text[i] != '\r' {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
