package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/top3pick/phonerec/config"
	"github.com/top3pick/phonerec/engine"
)

const brandJSON = `{
  "brand": "Poco",
  "phones": [
    {"id": "poco-f6", "model": "F6", "price": 19999, "processor": "Snapdragon 8s Gen 3",
     "best_for": ["gaming"], "rating": 4.5, "reason": "Flagship chip"},
    {"id": "poco-x6", "model": "X6", "price": 17999, "processor": "Snapdragon 7s Gen 2",
     "best_for": ["battery"], "rating": 4.2, "reason": "Big battery"}
  ]
}`

func testConfig(t *testing.T) *config.App {
	t.Helper()
	dir := t.TempDir()
	brandDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(brandDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(brandDir, "poco.json"), []byte(brandJSON), 0o644))

	c := config.Defaults()
	c.Data.BrandDir = brandDir
	c.Data.Brands = []string{"poco"}
	c.Snapshot.Path = filepath.Join(dir, "models")
	return c
}

func TestCSVPath(t *testing.T) {
	c := config.Defaults()
	assert.Equal(t, filepath.Join("data", "phones_data.csv"), csvPath(c))

	c.Data.CSVPath = "/srv/phones.csv"
	assert.Equal(t, "/srv/phones.csv", csvPath(c))
}

func TestStoreOptions(t *testing.T) {
	c := config.Defaults()
	c.Snapshot.Backend = config.BackendRedis
	c.Snapshot.Redis = config.RedisConfig{Addr: "redis:6379", Password: "pw", DB: 2}

	opts := storeOptions(c)
	assert.Equal(t, config.BackendRedis, opts.Backend)
	assert.Equal(t, "redis:6379", opts.RedisAddr)
	assert.Equal(t, "pw", opts.RedisPassword)
	assert.Equal(t, 2, opts.RedisDB)
}

func TestEngineOptions_PipelineFile(t *testing.T) {
	c := config.Defaults()
	c.Engine.PipelineFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := engineOptions(c)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`pipeline:
  name: specs
  nodes:
    - type: filter.budget
    - type: rank.rating
    - type: rerank.topn
`), 0o644))
	c.Engine.PipelineFile = path
	opts, err := engineOptions(c)
	require.NoError(t, err)
	assert.Len(t, opts, 5)
}

func TestLoadEngine_PreparesAndPersists(t *testing.T) {
	ctx := context.Background()
	c := testConfig(t)

	e, err := loadEngine(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Catalog().Len())
	assert.FileExists(t, csvPath(c))
	assert.FileExists(t, filepath.Join(c.Snapshot.Path, c.Snapshot.Key))

	again, err := loadEngine(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, e.ID(), again.ID())

	budget := 18000
	res, err := again.RecommendBySpecs(ctx, engine.SpecQuery{Budget: &budget}, 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "X6", res[0].Model)
}
