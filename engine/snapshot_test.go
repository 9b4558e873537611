package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/feature"
	"github.com/top3pick/phonerec/store"
)

func TestSnapshotRoundTrip(t *testing.T) {
	phones := samplePhones()
	phones[0].Gaming, phones[1].Gaming = 4.5, 3.9
	e := newEngine(t, phones, WithDegenerate(feature.DegenerateNeutral))
	ctx := context.Background()

	data, err := e.MarshalBinary()
	require.NoError(t, err)
	restored, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, e.ID(), restored.ID())
	assert.True(t, e.CreatedAt().Equal(restored.CreatedAt()))
	assert.Equal(t, e.Catalog().Phones, restored.Catalog().Phones)
	assert.Equal(t, e.Features().Bounds.Degenerate, restored.Features().Bounds.Degenerate)
	for i := range e.Features().Vectors {
		assert.InDeltaSlice(t, e.Features().Vectors[i], restored.Features().Vectors[i], 1e-12)
	}

	for _, q := range []string{"gaming", "bionic camera", "dimensity battery display", "nothing here"} {
		want, err := e.RecommendByText(ctx, q, 5)
		require.NoError(t, err)
		got, err := restored.RecommendByText(ctx, q, 5)
		require.NoError(t, err)
		require.Len(t, got, len(want), q)
		for i := range want {
			assert.Equal(t, want[i].Model, got[i].Model)
			assert.InDelta(t, want[i].SimilarityScore, got[i].SimilarityScore, 1e-9)
		}
	}

	q := SpecQuery{Budget: intPtr(30000), UseCase: "gaming"}
	want, err := e.RecommendBySpecs(ctx, q, 5)
	require.NoError(t, err)
	got, err := restored.RecommendBySpecs(ctx, q, 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	wantStats, _ := e.Stats()
	gotStats, _ := restored.Stats()
	assert.Equal(t, wantStats, gotStats)
}

func TestSnapshotKeepsReport(t *testing.T) {
	c, err := catalog.Normalize([]catalog.Record{
		{"id": "a", "brand": "Samsung", "model": "A", "best_for": "gaming", "price": "n/a", "rating": 4.1},
		{"id": "b", "brand": "Apple", "model": "B", "best_for": "camera", "price": 50000, "rating": 4.6},
	})
	require.NoError(t, err)
	e, err := New(c)
	require.NoError(t, err)
	require.Greater(t, e.Report().Count(), 0)

	data, err := e.MarshalBinary()
	require.NoError(t, err)
	restored, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, e.Report(), restored.Report())
}

func TestUnmarshal_Corrupt(t *testing.T) {
	tests := map[string]string{
		"not json":      `{{{`,
		"wrong version": `{"version": 99}`,
		"empty":         `{"version": 1}`,
		"size mismatch": `{"version":1,"phones":[{"id":"a"}],"features":{"text_blobs":[],"vectors":[],"bounds":{}},"index":{"vocabulary":[],"idf":[],"docs":[]}}`,
		"bad index":     `{"version":1,"phones":[{"id":"a"}],"features":{"text_blobs":["x"],"vectors":[[0]],"bounds":{}},"index":{"vocabulary":["x"],"idf":[],"docs":[{"i":[],"v":[]}]}}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal([]byte(data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSnapshotCorrupt)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	_, err := Load(ctx, s, "snap")
	assert.True(t, core.IsStoreNotFound(err))

	e := newEngine(t, samplePhones())
	require.NoError(t, e.Save(ctx, s, "snap"))

	loaded, err := Load(ctx, s, "snap")
	require.NoError(t, err)
	assert.Equal(t, e.ID(), loaded.ID())

	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx, fs, "phone_recommender.snapshot"))
	loaded, err = Load(ctx, fs, "phone_recommender.snapshot")
	require.NoError(t, err)
	assert.Equal(t, e.Catalog().Len(), loaded.Catalog().Len())
}
