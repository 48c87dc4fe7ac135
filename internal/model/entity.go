package model

// Identifier is an opaque domain identifier. Its role (entity, representation, file)
// is implied by where it is attached in the object graph.
type Identifier struct {
	Value string `json:"value"`
}

// IntellectualEntity is the root of the preservation object graph.
// It is a pure value owned by the caller; nothing in this module retains it.
type IntellectualEntity struct {
	Identifier      Identifier       `json:"identifier"`
	Descriptive     *Metadata        `json:"descriptive,omitempty"`
	LifecycleState  *LifecycleState  `json:"lifecycle_state,omitempty"`
	Representations []Representation `json:"representations"`
}

// Representation is one rendition of an entity.
// Technical maps the technical-metadata datastream id to its record.
type Representation struct {
	Identifier Identifier          `json:"identifier"`
	Title      string              `json:"title,omitempty"`
	Rights     *Metadata           `json:"rights,omitempty"`
	Provenance *Metadata           `json:"provenance,omitempty"`
	Source     *Metadata           `json:"source,omitempty"`
	Technical  map[string]Metadata `json:"technical,omitempty"`
	Files      []File              `json:"files"`
}

// File describes a bitstream of a representation. The bytes themselves are never loaded;
// URI points at them and the repository registers it as an external datastream.
type File struct {
	Identifier Identifier          `json:"identifier"`
	Technical  map[string]Metadata `json:"technical,omitempty"`
	Filename   string              `json:"filename,omitempty"`
	MIMEType   string              `json:"mime_type,omitempty"`
	URI        string              `json:"uri,omitempty"`
}

// HasContent reports whether the file carries a complete content reference.
func (f File) HasContent() bool {
	return f.Filename != "" && f.URI != "" && f.MIMEType != ""
}
