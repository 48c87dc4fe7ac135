package contentmodel

// Role is the closed set of semantic roles the engine knows how to read and write.
// Role names in composite model documents stay open-ended strings; they are turned into
// a Role once, at parse time, and names without a Role are kept aside as unknown.
type Role int

const (
	RoleDescriptive Role = iota + 1
	RoleLifecycle
	RoleRights
	RoleProvenance
	RoleSource
	RoleRepresentationTechnical
	RoleFileTechnical
	RoleFileContent
)

// Roles lists every Role in write order.
var Roles = []Role{
	RoleLifecycle,
	RoleDescriptive,
	RoleProvenance,
	RoleRights,
	RoleSource,
	RoleRepresentationTechnical,
	RoleFileTechnical,
	RoleFileContent,
}

var roleNames = map[Role]string{
	RoleDescriptive:             "descriptive",
	RoleLifecycle:               "lifecycle",
	RoleRights:                  "rights",
	RoleProvenance:              "provenance",
	RoleSource:                  "source",
	RoleRepresentationTechnical: "representation_technical",
	RoleFileTechnical:           "file_technical",
	RoleFileContent:             "file_content",
}

// ParseRole maps a mapsAs name to its Role.
func ParseRole(name string) (Role, bool) {
	for r, n := range roleNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// Multi reports whether the role maps to a set of datastreams rather than one.
func (r Role) Multi() bool {
	return r == RoleRepresentationTechnical || r == RoleFileTechnical
}
