package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/top3pick/phonerec/core"
)

func TestBrandDiversity(t *testing.T) {
	phones := []core.Phone{
		{ID: "s1", Brand: "Samsung"},
		{ID: "a1", Brand: "Apple"},
		{ID: "s2", Brand: "samsung"},
		{ID: "s3", Brand: "Samsung"},
		{ID: "x1"},
		{ID: "x2"},
	}
	in := func() []*core.Item {
		out := make([]*core.Item, len(phones))
		for i := range phones {
			out[i] = core.NewPhoneItem(i, &phones[i])
		}
		return out
	}
	collect := func(items []*core.Item) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.ID)
		}
		return out
	}

	got, err := (&BrandDiversity{}).Process(context.Background(), nil, in())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "a1", "x1", "x2"}, collect(got))

	got, err = (&BrandDiversity{MaxPerBrand: 2}).Process(context.Background(), nil, in())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "a1", "s2", "x1", "x2"}, collect(got))
}
