package contentmodel

import (
	"context"
	"errors"
	"testing"

	repoMocks "domsync/internal/repository/mocks"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityModel = `<dsCompositeModel xmlns="info:fedora/fedora-system:def/dsCompositeModel#">
    <dsTypeModel ID="DC"><form MIME="text/xml"/></dsTypeModel>
    <dsTypeModel ID="SCAPE_DESCRIPTIVE">
        <form MIME="text/xml"/>
        <extension name="SCAPE"><mapsAs name="descriptive"/></extension>
    </dsTypeModel>
    <dsTypeModel ID="SCAPE_LIFECYCLE">
        <extension name="SCAPE"><mapsAs name="lifecycle"/></extension>
    </dsTypeModel>
    <dsTypeModel ID="SCAPE_REPRESENTATION_TECHNICAL">
        <extension name="SCAPE"><mapsAs name="representation_technical"/></extension>
    </dsTypeModel>
</dsCompositeModel>`

const representationModel = `<dsCompositeModel xmlns="info:fedora/fedora-system:def/dsCompositeModel#">
    <dsTypeModel ID="SCAPE_RIGHTS">
        <extension name="SCAPE"><mapsAs name="rights"/></extension>
    </dsTypeModel>
    <dsTypeModel ID="SCAPE_REPRESENTATION_TECHNICAL_2">
        <extension name="SCAPE"><mapsAs name="representation_technical"/></extension>
    </dsTypeModel>
    <dsTypeModel ID="SCAPE_REPRESENTATION_TECHNICAL">
        <extension name="SCAPE"><mapsAs name="representation_technical"/></extension>
    </dsTypeModel>
    <dsTypeModel ID="SCAPE_AUDIT">
        <extension name="SCAPE"><mapsAs name="audit_trail"/></extension>
    </dsTypeModel>
</dsCompositeModel>`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(entityModel), "")
	require.NoError(t, err)
	assert.Equal(t, []Mapping{
		{DatastreamID: "SCAPE_DESCRIPTIVE", Role: "descriptive"},
		{DatastreamID: "SCAPE_LIFECYCLE", Role: "lifecycle"},
		{DatastreamID: "SCAPE_REPRESENTATION_TECHNICAL", Role: "representation_technical"},
	}, doc.Mappings)

	doc, err = ParseDocument([]byte(entityModel), "OTHER")
	require.NoError(t, err)
	assert.Empty(t, doc.Mappings)
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not xml", input: "nope"},
		{name: "wrong root", input: `<premis/>`},
		{name: "missing id", input: `<dsCompositeModel><dsTypeModel><extension name="SCAPE"><mapsAs name="rights"/></extension></dsTypeModel></dsCompositeModel>`},
		{name: "extension without mapsAs", input: `<dsCompositeModel><dsTypeModel ID="X"><extension name="SCAPE"/></dsTypeModel></dsCompositeModel>`},
		{name: "mapsAs without name", input: `<dsCompositeModel><dsTypeModel ID="X"><extension name="SCAPE"><mapsAs/></extension></dsTypeModel></dsCompositeModel>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.input), DefaultExtension)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestFromDocument(t *testing.T) {
	t.Run("unknown roles are kept aside", func(t *testing.T) {
		doc, err := ParseDocument([]byte(representationModel), "")
		require.NoError(t, err)
		s, err := FromDocument(doc)
		require.NoError(t, err)

		id, ok := s.Datastream(RoleRights)
		assert.True(t, ok)
		assert.Equal(t, "SCAPE_RIGHTS", id)
		assert.Equal(t, []string{"SCAPE_REPRESENTATION_TECHNICAL_2", "SCAPE_REPRESENTATION_TECHNICAL"}, s.Datastreams(RoleRepresentationTechnical))
		assert.Equal(t, map[string][]string{"audit_trail": {"SCAPE_AUDIT"}}, s.Unknown())
	})

	t.Run("conflicting single role in one document", func(t *testing.T) {
		_, err := FromDocument(&Document{Mappings: []Mapping{
			{DatastreamID: "A", Role: "rights"},
			{DatastreamID: "B", Role: "rights"},
		}})
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("repeated identical mapping is fine", func(t *testing.T) {
		s, err := FromDocument(&Document{Mappings: []Mapping{
			{DatastreamID: "A", Role: "rights"},
			{DatastreamID: "A", Role: "rights"},
		}})
		require.NoError(t, err)
		id, _ := s.Datastream(RoleRights)
		assert.Equal(t, "A", id)
	})
}

func TestSchema_Merge(t *testing.T) {
	a, err := FromDocument(&Document{Mappings: []Mapping{
		{DatastreamID: "DS1", Role: "rights"},
		{DatastreamID: "T1", Role: "file_technical"},
		{DatastreamID: "L1", Role: "lifecycle"},
	}})
	require.NoError(t, err)
	b, err := FromDocument(&Document{Mappings: []Mapping{
		{DatastreamID: "DS2", Role: "source"},
		{DatastreamID: "T2", Role: "file_technical"},
		{DatastreamID: "T1", Role: "file_technical"},
		{DatastreamID: "L2", Role: "lifecycle"},
	}})
	require.NoError(t, err)

	conflicts := a.Merge(b)

	rights, _ := a.Datastream(RoleRights)
	source, _ := a.Datastream(RoleSource)
	lifecycle, _ := a.Datastream(RoleLifecycle)
	assert.Equal(t, "DS1", rights)
	assert.Equal(t, "DS2", source)
	assert.Equal(t, "L2", lifecycle)
	assert.Equal(t, []string{"T1", "T2"}, a.Datastreams(RoleFileTechnical))
	assert.Equal(t, []Conflict{{Role: RoleLifecycle, Previous: "L1", Current: "L2"}}, conflicts)
}

func TestRole(t *testing.T) {
	for _, r := range Roles {
		back, ok := ParseRole(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, back)
	}
	_, ok := ParseRole("audit_trail")
	assert.False(t, ok)
	assert.True(t, RoleFileTechnical.Multi())
	assert.False(t, RoleFileContent.Multi())
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		models     []string
		setupMocks func(m *repoMocks.MockObjectRepository)
		wantErr    error
		check      func(t *testing.T, s *Schema, hook *logtest.Hook)
	}{
		{
			name:   "merges in order and skips ignored models",
			models: []string{"info:fedora/fedora-system:FedoraObject-3.0", "info:fedora/doms:Entity", "doms:Representation"},
			setupMocks: func(m *repoMocks.MockObjectRepository) {
				m.On("GetDatastreamContent", ctx, "doms:Entity", DefaultDatastream).Return(entityModel, nil)
				m.On("GetDatastreamContent", ctx, "doms:Representation", DefaultDatastream).Return(representationModel, nil)
			},
			check: func(t *testing.T, s *Schema, hook *logtest.Hook) {
				d, _ := s.Datastream(RoleDescriptive)
				r, _ := s.Datastream(RoleRights)
				assert.Equal(t, "SCAPE_DESCRIPTIVE", d)
				assert.Equal(t, "SCAPE_RIGHTS", r)
				assert.Equal(t, []string{"SCAPE_REPRESENTATION_TECHNICAL", "SCAPE_REPRESENTATION_TECHNICAL_2"}, s.Datastreams(RoleRepresentationTechnical))
				for _, e := range hook.AllEntries() {
					assert.NotEqual(t, "content_model_role_conflict", e.Message)
				}
			},
		},
		{
			name:   "conflict is logged, last wins",
			models: []string{"doms:A", "doms:B"},
			setupMocks: func(m *repoMocks.MockObjectRepository) {
				m.On("GetDatastreamContent", ctx, "doms:A", DefaultDatastream).
					Return(`<dsCompositeModel><dsTypeModel ID="R1"><extension name="SCAPE"><mapsAs name="rights"/></extension></dsTypeModel></dsCompositeModel>`, nil)
				m.On("GetDatastreamContent", ctx, "doms:B", DefaultDatastream).
					Return(`<dsCompositeModel><dsTypeModel ID="R2"><extension name="SCAPE"><mapsAs name="rights"/></extension></dsTypeModel></dsCompositeModel>`, nil)
			},
			check: func(t *testing.T, s *Schema, hook *logtest.Hook) {
				r, _ := s.Datastream(RoleRights)
				assert.Equal(t, "R2", r)
				require.NotNil(t, hook.LastEntry())
				assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
				assert.Equal(t, "content_model_role_conflict", hook.LastEntry().Message)
			},
		},
		{
			name:   "fetch failure",
			models: []string{"doms:Entity"},
			setupMocks: func(m *repoMocks.MockObjectRepository) {
				m.On("GetDatastreamContent", ctx, "doms:Entity", DefaultDatastream).Return(nil, errors.New("connection refused"))
			},
			wantErr: ErrFetch,
		},
		{
			name:   "malformed document",
			models: []string{"doms:Entity"},
			setupMocks: func(m *repoMocks.MockObjectRepository) {
				m.On("GetDatastreamContent", ctx, "doms:Entity", DefaultDatastream).Return("<dsCompositeModel>", nil)
			},
			wantErr: ErrInvalidDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockObjectRepository)
			tt.setupMocks(mRepo)
			logger, hook := logtest.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)

			r := NewResolver(mRepo, Options{
				Ignored: []string{"fedora-system:FedoraObject-3.0"},
				Logger:  logger,
			})
			s, err := r.Resolve(ctx, tt.models)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
			} else {
				require.NoError(t, err)
				tt.check(t, s, hook)
			}
			mRepo.AssertExpectations(t)
		})
	}
}
