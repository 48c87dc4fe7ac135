package model

import (
	"encoding/xml"
	"fmt"
)

// LifecycleNamespace is the XML namespace of serialized lifecycle states.
const LifecycleNamespace = "http://scape-project.eu/model"

// State is the ingest state of an entity.
type State string

const (
	StateNew          State = "NEW"
	StateIngesting    State = "INGESTING"
	StateIngested     State = "INGESTED"
	StateIngestFailed State = "INGEST_FAILED"
	StateOther        State = "OTHER"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateNew, StateIngesting, StateIngested, StateIngestFailed, StateOther:
		return true
	}
	return false
}

// LifecycleState records where an entity is in its ingest lifecycle.
type LifecycleState struct {
	State   State  `json:"state"`
	Details string `json:"details,omitempty"`
}

type lifecycleXML struct {
	XMLName xml.Name `xml:"http://scape-project.eu/model lifecycle-state"`
	State   State    `xml:"state,attr"`
	Details string   `xml:",chardata"`
}

// Metadata serializes the lifecycle state into its canonical XML record.
func (l LifecycleState) Metadata() (Metadata, error) {
	if !l.State.Valid() {
		return Metadata{}, fmt.Errorf("%w: unknown lifecycle state %q", ErrInvalidMetadata, l.State)
	}
	b, err := xml.Marshal(lifecycleXML{State: l.State, Details: l.Details})
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	return ParseMetadata(b)
}

// ParseLifecycleState decodes a lifecycle record.
func ParseLifecycleState(m Metadata) (*LifecycleState, error) {
	var v lifecycleXML
	if err := xml.Unmarshal([]byte(m.xml), &v); err != nil {
		return nil, fmt.Errorf("%w: lifecycle state: %v", ErrInvalidMetadata, err)
	}
	if !v.State.Valid() {
		return nil, fmt.Errorf("%w: unknown lifecycle state %q", ErrInvalidMetadata, v.State)
	}
	return &LifecycleState{State: v.State, Details: v.Details}, nil
}
