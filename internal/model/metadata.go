package model

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidMetadata is returned when a metadata record is not a single well-formed XML document.
var ErrInvalidMetadata = errors.New("invalid metadata")

// Metadata is an opaque XML metadata record (Dublin Core, PREMIS, textMD, ...).
// The stored string is its canonical form: it is what gets checksummed and written.
type Metadata struct {
	xml string
}

// ParseMetadata validates b as a single-rooted XML document and returns it as Metadata.
// Surrounding whitespace is not part of the canonical form.
func ParseMetadata(b []byte) (Metadata, error) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return Metadata{}, fmt.Errorf("%w: empty document", ErrInvalidMetadata)
	}

	dec := xml.NewDecoder(strings.NewReader(s))
	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return Metadata{}, fmt.Errorf("%w: character data outside the root element", ErrInvalidMetadata)
			}
		}
	}
	if roots != 1 {
		return Metadata{}, fmt.Errorf("%w: expected one root element, found %d", ErrInvalidMetadata, roots)
	}
	return Metadata{xml: s}, nil
}

// MustMetadata is like ParseMetadata but panics on error. Intended for literals.
func MustMetadata(s string) Metadata {
	m, err := ParseMetadata([]byte(s))
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the canonical serialized form.
func (m Metadata) String() string { return m.xml }

// IsZero reports whether m holds no document.
func (m Metadata) IsZero() bool { return m.xml == "" }

// FirstText returns the character data of the first element whose local name is local,
// or "" if there is none.
func (m Metadata) FirstText(local string) string {
	dec := xml.NewDecoder(strings.NewReader(m.xml))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		var text string
		if err := dec.DecodeElement(&text, &se); err != nil {
			return ""
		}
		return strings.TrimSpace(text)
	}
}

// MarshalText lets Metadata travel as a plain string in JSON.
func (m Metadata) MarshalText() ([]byte, error) {
	return []byte(m.xml), nil
}

// UnmarshalText validates the incoming document.
func (m *Metadata) UnmarshalText(b []byte) error {
	parsed, err := ParseMetadata(b)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
