package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/feature"
	"github.com/top3pick/phonerec/pipeline"
)

func samplePhones() []core.Phone {
	return []core.Phone{
		{ID: "s-a54", Brand: "Samsung", Model: "Galaxy A54", Price: 28999, Processor: "Exynos 1380", BestFor: "gaming, multitasking", Reason: "Smooth 120Hz display", Rating: 4.3},
		{ID: "a-15", Brand: "Apple", Model: "iPhone 15", Price: 69999, Processor: "A16 Bionic", BestFor: "camera, performance", Reason: "Best video recording", Rating: 4.7},
		{ID: "p-f6", Brand: "Poco", Model: "F6", Price: 19999, Processor: "Snapdragon 8s Gen 3", BestFor: "gaming", Reason: "Flagship chip on a budget", Rating: 4.5},
		{ID: "m-e40", Brand: "Motorola", Model: "Edge 40", Price: 24999, Processor: "Dimensity 8020", BestFor: "display, design", Reason: "Curved pOLED panel", Rating: 4.2},
		{ID: "r-n13", Brand: "Redmi", Model: "Note 13", Price: 14999, Processor: "Dimensity 6080", BestFor: "battery", Reason: "Two day battery life", Rating: 4.0},
	}
}

func newEngine(t *testing.T, phones []core.Phone, opts ...Option) *Engine {
	t.Helper()
	c, err := catalog.FromPhones(phones)
	require.NoError(t, err)
	e, err := New(c, opts...)
	require.NoError(t, err)
	return e
}

func intPtr(n int) *int { return &n }

func TestRecommendBySpecs_BudgetScenario(t *testing.T) {
	e := newEngine(t, []core.Phone{
		{ID: "a", Model: "A", Price: 10000, Rating: 4.5},
		{ID: "b", Model: "B", Price: 15000, Rating: 4.0},
		{ID: "c", Model: "C", Price: 25000, Rating: 4.8},
	})

	got, err := e.RecommendBySpecs(context.Background(), SpecQuery{Budget: intPtr(20000)}, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 10000, got[0].Price)
	assert.Equal(t, 4.5, got[0].Rating)
	assert.Equal(t, 15000, got[1].Price)
	assert.Equal(t, 4.0, got[1].Rating)
}

func TestRecommendBySpecs_UseCaseScenario(t *testing.T) {
	e := newEngine(t, samplePhones())
	ctx := context.Background()

	got, err := e.RecommendBySpecs(ctx, SpecQuery{UseCase: "gaming"}, 5)
	require.NoError(t, err)
	models := make([]string, 0, len(got))
	for _, m := range got {
		models = append(models, m.Model)
	}
	assert.Contains(t, models, "Galaxy A54")

	got, err = e.RecommendBySpecs(ctx, SpecQuery{UseCase: "camera"}, 5)
	require.NoError(t, err)
	for _, m := range got {
		assert.NotEqual(t, "Galaxy A54", m.Model)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "iPhone 15", got[0].Model)
	assert.Equal(t, "Best video recording", got[0].Reason)
}

func TestRecommendBySpecs_Overall(t *testing.T) {
	e := newEngine(t, samplePhones())
	for _, uc := range []string{"", "overall", "Overall"} {
		got, err := e.RecommendBySpecs(context.Background(), SpecQuery{UseCase: uc}, 10)
		require.NoError(t, err)
		assert.Len(t, got, 5, uc)
		assert.Equal(t, "iPhone 15", got[0].Model)
	}
}

func TestRecommendBySpecs_EmptyIsNotError(t *testing.T) {
	e := newEngine(t, samplePhones())
	got, err := e.RecommendBySpecs(context.Background(), SpecQuery{Budget: intPtr(0)}, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommendBySpecs_Expr(t *testing.T) {
	e := newEngine(t, samplePhones())
	ctx := context.Background()

	got, err := e.RecommendBySpecs(ctx, SpecQuery{Expr: `item.brand == "Poco" || item.price < 15000`}, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "F6", got[0].Model)
	assert.Equal(t, "Note 13", got[1].Model)

	_, err = e.RecommendBySpecs(ctx, SpecQuery{Expr: `item.price <`}, 5)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))
}

func TestRecommendBySpecs_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	useCases := []string{"gaming", "camera", "battery", "display", "performance"}
	phones := make([]core.Phone, 60)
	for i := range phones {
		phones[i] = core.Phone{
			ID:        fmt.Sprintf("p%02d", i),
			Brand:     []string{"Samsung", "Apple", "Poco", "Vivo"}[rng.Intn(4)],
			Model:     fmt.Sprintf("Model %d", i),
			Price:     5000 + rng.Intn(95000),
			Processor: "Chip",
			BestFor:   useCases[rng.Intn(len(useCases))] + ", " + strings.ToUpper(useCases[rng.Intn(len(useCases))]),
			Reason:    "reason",
			Rating:    float64(30+rng.Intn(21)) / 10,
		}
	}
	e := newEngine(t, phones)
	ctx := context.Background()

	for trial := 0; trial < 50; trial++ {
		budget := rng.Intn(110000)
		uc := useCases[rng.Intn(len(useCases))]
		topK := 1 + rng.Intn(12)

		got, err := e.RecommendBySpecs(ctx, SpecQuery{Budget: intPtr(budget), UseCase: uc}, topK)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), topK)
		for i, m := range got {
			assert.LessOrEqual(t, m.Price, budget)
			assert.Contains(t, strings.ToLower(m.BestFor), uc)
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Rating, m.Rating)
			}
		}
	}
}

func TestRecommendByText(t *testing.T) {
	e := newEngine(t, samplePhones())
	ctx := context.Background()

	got, err := e.RecommendByText(ctx, "bionic", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "iPhone 15", got[0].Model)
	assert.Greater(t, got[0].SimilarityScore, 0.0)

	got, err = e.RecommendByText(ctx, "qwerty zxcvb", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = e.RecommendByText(ctx, "gaming display battery camera", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 2)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].SimilarityScore, got[i].SimilarityScore)
	}
}

func TestRecommendByText_IdenticalBlob(t *testing.T) {
	phones := samplePhones()
	e := newEngine(t, phones)

	for i := range phones {
		blob := feature.TextBlob(&phones[i])
		got, err := e.RecommendByText(context.Background(), blob, 5)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, phones[i].Model, got[0].Model)
		assert.Greater(t, got[0].SimilarityScore, 0.99)
	}
}

func TestRecommendByText_DefaultTopK(t *testing.T) {
	phones := make([]core.Phone, 9)
	for i := range phones {
		phones[i] = core.Phone{ID: fmt.Sprintf("x%d", i), Brand: "Nokia", BestFor: "battery", Rating: 4}
	}
	e := newEngine(t, phones, WithTopK(3))
	got, err := e.RecommendByText(context.Background(), "nokia", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestNotReady(t *testing.T) {
	var e *Engine
	_, err := e.RecommendByText(context.Background(), "gaming", 5)
	assert.ErrorIs(t, err, core.ErrNotReady)

	_, err = (&Engine{}).RecommendBySpecs(context.Background(), SpecQuery{}, 5)
	assert.True(t, core.IsNotReady(err))

	_, err = e.Stats()
	assert.True(t, core.IsNotReady(err))

	_, err = e.MarshalBinary()
	assert.True(t, core.IsNotReady(err))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&catalog.Catalog{})
	assert.True(t, core.IsInvalidInput(err))

	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.unknown"}}
	_, err = New(&catalog.Catalog{Phones: samplePhones()}, WithSpecPipeline(cfg))
	assert.Error(t, err)
}

func TestNew_NoIndexableText(t *testing.T) {
	e := newEngine(t, []core.Phone{
		{ID: "a", Brand: "X", Price: 10000, Rating: 4.5},
		{ID: "b", Model: "B", Price: 15000, Rating: 4.0},
	})
	assert.Empty(t, e.Index().Vocabulary)

	texts, err := e.RecommendByText(context.Background(), "gaming phone", 5)
	require.NoError(t, err)
	assert.NotNil(t, texts)
	assert.Empty(t, texts)

	specs, err := e.RecommendBySpecs(context.Background(), SpecQuery{Budget: intPtr(12000)}, 5)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 10000, specs[0].Price)

	data, err := e.MarshalBinary()
	require.NoError(t, err)
	restored, err := Unmarshal(data)
	require.NoError(t, err)
	texts, err = restored.RecommendByText(context.Background(), "gaming", 5)
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestStatsAndAccessors(t *testing.T) {
	e := newEngine(t, samplePhones())

	st, err := e.Stats()
	require.NoError(t, err)
	assert.Equal(t, 5, st.TotalPhones)
	assert.Equal(t, []string{"Samsung", "Apple", "Poco", "Motorola", "Redmi"}, st.Brands)
	assert.Equal(t, 14999, st.PriceRange.Min)
	assert.Equal(t, 69999, st.PriceRange.Max)

	assert.Equal(t, 5, e.Catalog().Len())
	assert.Equal(t, 5, e.Features().Len())
	assert.NotEmpty(t, e.Index().Vocabulary)
	assert.Len(t, e.ID(), 36)
	assert.False(t, e.CreatedAt().IsZero())
	assert.Equal(t, 0, e.Report().Count())
}

func TestSpecPipelineOverride(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: diverse
  nodes:
    - type: filter.budget
    - type: rank.rating
    - type: rerank.brand_diversity
    - type: rerank.topn
`))
	require.NoError(t, err)

	phones := append(samplePhones(), core.Phone{ID: "a-15p", Brand: "Apple", Model: "iPhone 15 Pro", Price: 99999, BestFor: "camera", Rating: 4.9})
	e := newEngine(t, phones, WithSpecPipeline(cfg))

	got, err := e.RecommendBySpecs(context.Background(), SpecQuery{}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, "iPhone 15 Pro", got[0].Model)
	for _, m := range got[1:] {
		assert.NotEqual(t, "Apple", m.Brand)
	}
}
