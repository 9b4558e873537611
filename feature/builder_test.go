package feature

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/top3pick/phonerec/core"
)

func samplePhones() []core.Phone {
	return []core.Phone{
		{ID: "a", Brand: "Samsung", BestFor: "gaming, multitasking", Processor: "Exynos 1380",
			Reason: "Smooth 120Hz", Price: 10000, Gaming: 4.0, Camera: 3.5, BatteryScore: 4.5, Performance: 4.0, Rating: 4.5},
		{ID: "b", Brand: "Apple", Processor: "A16 Bionic", Price: 15000, Gaming: 4.8, Camera: 4.9,
			BatteryScore: 4.0, Performance: 5.0, Rating: 4.0},
		{ID: "c", Brand: "Poco", BestFor: "gaming", Price: 25000, Gaming: 4.6, Camera: 4.0,
			BatteryScore: 4.5, Performance: 4.5, Rating: 4.8},
	}
}

func TestTextBlob_FixedOrder(t *testing.T) {
	phones := samplePhones()
	assert.Equal(t, "Samsung gaming, multitasking Exynos 1380 Smooth 120Hz", TextBlob(&phones[0]))
	// 缺失字段按空串参与拼接，分隔符位置保持稳定
	assert.Equal(t, "Apple  A16 Bionic ", TextBlob(&phones[1]))
	assert.Equal(t, "Poco gaming  ", TextBlob(&phones[2]))
}

func TestBuild_NormalizesToUnitRange(t *testing.T) {
	set := Build(samplePhones())
	require.Equal(t, 3, set.Len())

	for i, vec := range set.Vectors {
		require.Len(t, vec, len(NumericFields))
		for j, v := range vec {
			assert.GreaterOrEqual(t, v, 0.0, "phone %d field %s", i, NumericFields[j])
			assert.LessOrEqual(t, v, 1.0, "phone %d field %s", i, NumericFields[j])
		}
	}

	// price: 10000 -> 0, 15000 -> 1/3, 25000 -> 1
	assert.InDelta(t, 0.0, set.Vectors[0][0], 1e-12)
	assert.InDelta(t, 1.0/3.0, set.Vectors[1][0], 1e-12)
	assert.InDelta(t, 1.0, set.Vectors[2][0], 1e-12)
}

func TestBuild_RandomCatalogStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	phones := make([]core.Phone, 40)
	for i := range phones {
		phones[i] = core.Phone{
			Price:        1000 + rng.Intn(150000),
			Gaming:       rng.Float64() * 5,
			Camera:       rng.Float64() * 5,
			BatteryScore: rng.Float64() * 5,
			Performance:  rng.Float64() * 5,
			Rating:       rng.Float64() * 5,
		}
	}
	set := Build(phones)
	for _, vec := range set.Vectors {
		for _, v := range vec {
			assert.True(t, v >= 0 && v <= 1, "value %v out of range", v)
		}
	}
}

func TestBuild_DegenerateField(t *testing.T) {
	phones := samplePhones()
	for i := range phones {
		phones[i].Camera = 4.2
	}

	set := Build(phones)
	assert.True(t, set.Bounds.IsDegenerate("camera"))
	for _, vec := range set.Vectors {
		assert.Equal(t, 4.2, vec[2], "constant field passes through unnormalized")
	}

	neutral := Build(phones, WithDegenerate(DegenerateNeutral))
	for _, vec := range neutral.Vectors {
		assert.Equal(t, NeutralValue, vec[2])
	}
}

func TestSet_VectorUsesFrozenBounds(t *testing.T) {
	set := Build(samplePhones())
	vec := set.Vector(map[string]float64{"price": 20000, "rating": 4.5})
	assert.InDelta(t, (20000.0-10000.0)/15000.0, vec[0], 1e-12)
	assert.InDelta(t, 0.625, vec[5], 1e-12)
}

func TestBuild_Empty(t *testing.T) {
	set := Build(nil)
	assert.Equal(t, 0, set.Len())
	assert.NotNil(t, set.Bounds)
}
