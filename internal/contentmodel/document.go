package contentmodel

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned for composite model documents that cannot be used.
var ErrInvalidDocument = errors.New("invalid composite model document")

// DefaultExtension is the extension name carrying role annotations.
const DefaultExtension = "SCAPE"

type compositeXML struct {
	XMLName    xml.Name       `xml:"dsCompositeModel"`
	TypeModels []typeModelXML `xml:"dsTypeModel"`
}

type typeModelXML struct {
	ID         string         `xml:"ID,attr"`
	Extensions []extensionXML `xml:"extension"`
}

type extensionXML struct {
	Name   string      `xml:"name,attr"`
	MapsAs []mapsAsXML `xml:"mapsAs"`
}

type mapsAsXML struct {
	Name string `xml:"name,attr"`
}

// Mapping is one role annotation as written in the document.
type Mapping struct {
	DatastreamID string
	Role         string
}

// Document is the string-keyed content of one composite model, in declaration order.
type Document struct {
	Mappings []Mapping
}

// ParseDocument reads the role annotations inside the given extension of every dsTypeModel.
// Datastream types without the extension are not mapped.
//
//	<dsCompositeModel>
//	  <dsTypeModel ID="RIGHTS">
//	    <extension name="SCAPE"><mapsAs name="rights"/></extension>
//	  </dsTypeModel>
//	</dsCompositeModel>
func ParseDocument(b []byte, extension string) (*Document, error) {
	if extension == "" {
		extension = DefaultExtension
	}
	var v compositeXML
	if err := xml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc := &Document{}
	for i, tm := range v.TypeModels {
		for _, ext := range tm.Extensions {
			if ext.Name != extension {
				continue
			}
			if tm.ID == "" {
				return nil, fmt.Errorf("%w: dsTypeModel #%d has no ID", ErrInvalidDocument, i+1)
			}
			if len(ext.MapsAs) == 0 {
				return nil, fmt.Errorf("%w: %s: %s extension without mapsAs", ErrInvalidDocument, tm.ID, extension)
			}
			for _, m := range ext.MapsAs {
				if m.Name == "" {
					return nil, fmt.Errorf("%w: %s: mapsAs without name", ErrInvalidDocument, tm.ID)
				}
				doc.Mappings = append(doc.Mappings, Mapping{DatastreamID: tm.ID, Role: m.Name})
			}
		}
	}
	return doc, nil
}
