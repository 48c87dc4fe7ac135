package app

import (
	"context"
	"testing"

	"domsync/internal/config"
	"domsync/internal/model"
	"domsync/internal/repository/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compositeModel = `<dsCompositeModel>
    <dsTypeModel ID="DESCRIPTIVE"><extension name="SCAPE"><mapsAs name="descriptive"/></extension></dsTypeModel>
    <dsTypeModel ID="CONTENT"><extension name="SCAPE"><mapsAs name="file_content"/></extension></dsTypeModel>
</dsCompositeModel>`

func testAppConfig(t *testing.T) *config.AppConfig {
	t.Setenv("DOMSYNC_CONTENT_MODEL", "doms:ContentModel_Scape")
	t.Setenv("OTEL_SDK_DISABLED", "true")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minio")
	t.Setenv("MINIO_SECRET_KEY", "minio123")
	cfg := config.Load()
	cfg.Log.Writer = ""
	return cfg
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	require.NoError(t, repo.Ingest("doms:ContentModel_Scape", "content model"))
	require.NoError(t, repo.WriteDatastream(ctx, "doms:ContentModel_Scape", "DS-COMPOSITE-MODEL", []byte(compositeModel), "", "setup"))

	a, err := New(ctx, testAppConfig(t), repo)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close(ctx)) })

	desc := model.MustMetadata(`<dc><title>entity 1 title</title></dc>`)
	pid, err := a.Service.CreateOrUpdate(ctx, "", &model.IntellectualEntity{
		Identifier:  model.Identifier{Value: "entity-1"},
		Descriptive: &desc,
		Representations: []model.Representation{{
			Identifier: model.Identifier{Value: "representation-1"},
			Files: []model.File{{
				Identifier: model.Identifier{Value: "file-1"},
				Filename:   "logo.png",
				MIMEType:   "image/png",
				URI:        "s3://staging/logo.png",
			}},
		}},
	})
	require.NoError(t, err)

	profile, err := repo.GetObjectProfile(ctx, pid)
	require.NoError(t, err)
	content, ok := profile.Datastream("CONTENT")
	require.True(t, ok)
	assert.True(t, content.External)
	assert.Contains(t, content.URL, "http://localhost:9000/staging/logo.png?")

	n, err := testutil.GatherAndCount(a.Registry, "domsync_datastream_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNew_InvalidSyncConfig(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Sync.ContentModel = ""

	_, err := New(context.Background(), cfg, memory.New())
	assert.ErrorContains(t, err, "content model is required")
}
