package identifier

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	OAIDCNamespace = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	DCNamespace    = "http://purl.org/dc/elements/1.1/"
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
)

// ErrMalformedRecord is returned when a Dublin Core record cannot be decoded.
var ErrMalformedRecord = errors.New("malformed dublin core record")

// Element is one Dublin Core field, e.g. {Name: "identifier", Value: "uuid:1"}.
// Space is the element namespace; empty means Dublin Core. Attr excludes namespace
// declarations.
type Element struct {
	Name  string
	Space string
	Attr  []xml.Attr
	Value string
}

// Record is an oai_dc record. Element order is preserved.
type Record struct {
	Elements []Element
}

// ParseRecord decodes an oai_dc document.
func ParseRecord(b []byte) (*Record, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	rec := &Record{}
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if t.Name.Local != "dc" {
					return nil, fmt.Errorf("%w: unexpected root <%s>", ErrMalformedRecord, t.Name.Local)
				}
				depth++
				continue
			}
			var text string
			if err := dec.DecodeElement(&text, &t); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
			}
			rec.Elements = append(rec.Elements, element(t, strings.TrimSpace(text)))
		case xml.EndElement:
			depth--
		}
	}
	return rec, nil
}

func element(t xml.StartElement, value string) Element {
	e := Element{Name: t.Name.Local, Value: value}
	if t.Name.Space != DCNamespace {
		e.Space = t.Name.Space
	}
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		e.Attr = append(e.Attr, a)
	}
	return e
}

// Values returns the values of all elements named name.
func (r *Record) Values(name string) []string {
	var out []string
	for _, e := range r.Elements {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

// Identifiers returns all dc:identifier values.
func (r *Record) Identifiers() []string {
	return r.Values("identifier")
}

// Marshal encodes the record as an oai_dc document.
func (r *Record) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<oai_dc:dc xmlns:oai_dc="` + OAIDCNamespace + `" xmlns:dc="` + DCNamespace + `">` + "\n")
	for _, e := range r.Elements {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: element without name", ErrMalformedRecord)
		}
		name := "dc:" + e.Name
		if e.Space != "" && e.Space != DCNamespace {
			name = e.Name
		}
		buf.WriteString("  <" + name)
		if name == e.Name {
			buf.WriteString(` xmlns="`)
			if err := xml.EscapeText(&buf, []byte(e.Space)); err != nil {
				return nil, err
			}
			buf.WriteString(`"`)
		}
		if err := writeAttrs(&buf, e.Attr); err != nil {
			return nil, err
		}
		buf.WriteString(">")
		if err := xml.EscapeText(&buf, []byte(e.Value)); err != nil {
			return nil, err
		}
		buf.WriteString("</" + name + ">\n")
	}
	buf.WriteString("</oai_dc:dc>\n")
	return buf.Bytes(), nil
}

// writeAttrs emits attrs, declaring a prefix for each foreign attribute namespace.
func writeAttrs(buf *bytes.Buffer, attrs []xml.Attr) error {
	prefixes := make(map[string]string)
	for _, a := range attrs {
		name := a.Name.Local
		switch a.Name.Space {
		case "":
		case XMLNamespace:
			name = "xml:" + name
		default:
			p, ok := prefixes[a.Name.Space]
			if !ok {
				p = fmt.Sprintf("ns%d", len(prefixes)+1)
				prefixes[a.Name.Space] = p
				buf.WriteString(" xmlns:" + p + `="`)
				if err := xml.EscapeText(buf, []byte(a.Name.Space)); err != nil {
					return err
				}
				buf.WriteString(`"`)
			}
			name = p + ":" + name
		}
		buf.WriteString(" " + name + `="`)
		if err := xml.EscapeText(buf, []byte(a.Value)); err != nil {
			return err
		}
		buf.WriteString(`"`)
	}
	return nil
}

// NewRecord returns a record holding only identifiers.
func NewRecord(identifiers ...string) *Record {
	rec := &Record{}
	for _, id := range identifiers {
		rec.Elements = append(rec.Elements, Element{Name: "identifier", Value: id})
	}
	return rec
}

// Reassert replaces the identifiers owned by c with tagged, keeping every other element
// (the object's own pid identifier, titles, ...). It reports whether anything changed;
// ordering differences alone are not a change.
func (c Codec) Reassert(r *Record, tagged []string) (*Record, bool) {
	want := make(map[string]struct{}, len(tagged))
	for _, t := range tagged {
		want[t] = struct{}{}
	}

	out := &Record{Elements: make([]Element, 0, len(r.Elements)+len(tagged))}
	have := make(map[string]struct{})
	changed := false
	for _, e := range r.Elements {
		if e.Name == "identifier" && c.Owns(e.Value) {
			if _, ok := want[e.Value]; !ok {
				changed = true
				continue
			}
			if _, dup := have[e.Value]; dup {
				changed = true
				continue
			}
			have[e.Value] = struct{}{}
		}
		out.Elements = append(out.Elements, e)
	}
	for _, t := range tagged {
		if _, ok := have[t]; ok {
			continue
		}
		have[t] = struct{}{}
		out.Elements = append(out.Elements, Element{Name: "identifier", Value: t})
		changed = true
	}
	return out, changed
}
