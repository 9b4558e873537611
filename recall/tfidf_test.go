package recall

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/top3pick/phonerec/core"
)

var corpus = []string{
	"Samsung gaming, multitasking Exynos 1380 Smooth display for long gaming sessions",
	"Apple camera, performance A16 Bionic Best video camera in class",
	"Poco gaming Dimensity 8300 Ultra Flagship-grade performance on a budget",
	"Motorola display, design Snapdragon 7s Gen 2 Curved pOLED, clean software",
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"samsung", "gaming", "multitasking", "exynos", "1380"},
		Tokenize("Samsung gaming, multitasking Exynos 1380 a"))
	assert.Empty(t, Tokenize("a b c !"))
}

func TestTokenize_Unicode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"accented", "Café naïve 5G", []string{"café", "naïve", "5g"}},
		{"cjk", "手机 拍照", []string{"手机", "拍照"}},
		{"underscore", "snap_dragon x", []string{"snap_dragon"}},
		{"single letters dropped", "é ü 8", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFitTFIDF_Vocabulary(t *testing.T) {
	idx, err := FitTFIDF(corpus, 0)
	require.NoError(t, err)

	assert.IsNonDecreasing(t, idx.Vocabulary)
	assert.Len(t, idx.IDF, len(idx.Vocabulary))
	assert.Len(t, idx.Docs, len(corpus))

	// "gaming" 出现在 2 篇文档中：idf = ln(5/3) + 1
	gi := indexOf(idx.Vocabulary, "gaming")
	require.GreaterOrEqual(t, gi, 0)
	assert.InDelta(t, 1.5108256237659907, idx.IDF[gi], 1e-12)

	for _, d := range idx.Docs {
		assert.InDelta(t, 1.0, d.Norm(), 1e-12)
	}
}

func TestFitTFIDF_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	docs := []string{"alpha alpha alpha beta beta gamma", "alpha beta delta"}
	idx, err := FitTFIDF(docs, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, idx.Vocabulary)

	// 同频时按字典序取
	idx, err = FitTFIDF([]string{"zeta eta theta"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"eta", "theta"}, idx.Vocabulary)
}

func TestFitTFIDF_CapsAtHundredTerms(t *testing.T) {
	docs := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		docs = append(docs, fmt.Sprintf("term%03d shared", i))
	}
	idx, err := FitTFIDF(docs, DefaultMaxFeatures)
	require.NoError(t, err)
	assert.Len(t, idx.Vocabulary, DefaultMaxFeatures)
	assert.Contains(t, idx.Vocabulary, "shared")
}

func TestFitTFIDF_EmptyVocabulary(t *testing.T) {
	idx, err := FitTFIDF([]string{"", "a ! ?"}, 0)
	require.NoError(t, err)
	assert.Empty(t, idx.Vocabulary)
	assert.Empty(t, idx.IDF)
	assert.Len(t, idx.Docs, 2)

	got, err := idx.Query("gaming phone", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	restored, err := RestoreTFIDF(idx.Vocabulary, idx.IDF, idx.Docs)
	require.NoError(t, err)
	got, err = restored.Query("gaming", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_UniqueTermRanksOwnerFirst(t *testing.T) {
	idx, err := FitTFIDF(corpus, 0)
	require.NoError(t, err)

	got, err := idx.Query("bionic", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Greater(t, got[0].Score, 0.0)
}

func TestQuery_NoOverlapIsEmpty(t *testing.T) {
	idx, err := FitTFIDF(corpus, 0)
	require.NoError(t, err)

	got, err := idx.Query("zzz unknown words", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQuery_IdenticalTextScoresOne(t *testing.T) {
	idx, err := FitTFIDF(corpus, 0)
	require.NoError(t, err)

	for i, doc := range corpus {
		got, err := idx.Query(doc, 5)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, i, got[0].Index)
		assert.Greater(t, got[0].Score, 0.99)
	}
}

func TestQuery_SortedAndTruncated(t *testing.T) {
	idx, err := FitTFIDF(corpus, 0)
	require.NoError(t, err)

	got, err := idx.Query("gaming performance display camera", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), 2)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestQuery_TiesKeepCatalogOrder(t *testing.T) {
	idx, err := FitTFIDF([]string{"red phone", "blue phone", "red phone"}, 0)
	require.NoError(t, err)

	got, err := idx.Query("red", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 2, got[1].Index)
	assert.Equal(t, got[0].Score, got[1].Score)
}

func TestQuery_DefaultTopK(t *testing.T) {
	docs := make([]string, 8)
	for i := range docs {
		docs[i] = "common words here"
	}
	idx, err := FitTFIDF(docs, 0)
	require.NoError(t, err)

	got, err := idx.Query("common", 0)
	require.NoError(t, err)
	assert.Len(t, got, core.Defaults.DefaultTopK())
}

func TestQuery_NotFitted(t *testing.T) {
	var idx *TFIDF
	_, err := idx.Query("gaming", 5)
	assert.ErrorIs(t, err, core.ErrNotReady)

	_, err = (&TFIDF{}).Query("gaming", 5)
	assert.True(t, core.IsNotReady(err))
}

func TestRestoreTFIDF(t *testing.T) {
	idx, err := FitTFIDF(corpus, 0)
	require.NoError(t, err)

	restored, err := RestoreTFIDF(idx.Vocabulary, idx.IDF, idx.Docs)
	require.NoError(t, err)

	want, _ := idx.Query("gaming display", 5)
	got, _ := restored.Query("gaming display", 5)
	assert.Equal(t, want, got)

	_, err = RestoreTFIDF([]string{"a"}, nil, nil)
	assert.Error(t, err)
	_, err = RestoreTFIDF([]string{"a"}, []float64{1}, []SparseVector{{Indices: []int{3}, Values: []float64{1}}})
	assert.Error(t, err)
}

func TestCosine(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2}, Values: []float64{1, 1}}
	b := SparseVector{Indices: []int{2, 5}, Values: []float64{1, 1}}
	assert.InDelta(t, 0.5, Cosine(a, b), 1e-12)
	assert.Equal(t, 0.0, Cosine(a, SparseVector{}))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
