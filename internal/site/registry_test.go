package site

import (
	"errors"
	"testing"

	"github.com/law-makers/goodscrawl/internal/config"
	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"musinsa", "naver"}, r.Names())

	for _, name := range r.Names() {
		set, ok := r.Get(name)
		require.True(t, ok)
		assert.NoError(t, set.Validate(), name)
	}
}

func TestSelect(t *testing.T) {
	r := Default()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.musinsa.com/products/3674341", "musinsa"},
		{"https://www.musinsa.com/app/goods/1234567?loc=main", "musinsa"},
		{"https://smartstore.naver.com/shop/products/9876543210", "naver"},
		{"https://brand.naver.com/nike/products/123", "naver"},
		{"HTTPS://WWW.MUSINSA.COM/products/1", "musinsa"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			set, err := r.Select(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Name)
		})
	}
}

func TestSelectUnsupported(t *testing.T) {
	_, err := Default().Select("https://www.example.com/products/1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrUnsupportedSite))
	assert.Equal(t, extract.CodeUnsupportedSite, extract.CodeOf(err))

	var e *extract.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "https://www.example.com/products/1", e.Details["url"])
}

func TestGoodsID(t *testing.T) {
	m := Musinsa()
	assert.Equal(t, "3674341", m.DeriveGoodsID("https://www.musinsa.com/products/3674341"))
	assert.Equal(t, "1234567", m.DeriveGoodsID("https://www.musinsa.com/app/goods/1234567?loc=main"))
	assert.Equal(t, "", m.DeriveGoodsID("https://www.musinsa.com/brands/nike"))

	n := Naver()
	assert.Equal(t, "9876543210", n.DeriveGoodsID("https://smartstore.naver.com/shop/products/9876543210"))
}

func TestRegisterRejectsInvalidSet(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&extract.StrategySet{Name: "x"}))
	assert.Error(t, r.Register(&extract.StrategySet{Name: "x", Hosts: []string{"x.com"}, TitleSelectors: []string{"[[["}}))
	assert.Empty(t, r.Names())
}

func TestApplyOverrides(t *testing.T) {
	r := Default()
	before, _ := r.Get("musinsa")
	firstTitle := before.TitleSelectors[0]

	err := ApplyOverrides(r, map[string]config.SiteOverride{
		"musinsa": {
			TitleSelectors: []string{"h1.custom-title"},
			SoldOutMarkers: []string{"is-soldout"},
		},
	})
	require.NoError(t, err)

	after, _ := r.Get("musinsa")
	assert.Equal(t, "h1.custom-title", after.TitleSelectors[0])
	assert.Equal(t, firstTitle, after.TitleSelectors[1])
	assert.Equal(t, []string{"is-soldout", "btn_soldout"}, after.SoldOutMarkers)
	assert.Equal(t, before.PriceSelectors, after.PriceSelectors)

	// the previously handed out set is untouched
	assert.Equal(t, firstTitle, before.TitleSelectors[0])
}

func TestApplyOverridesErrors(t *testing.T) {
	r := Default()
	assert.Error(t, ApplyOverrides(r, map[string]config.SiteOverride{"unknown": {}}))
	assert.Error(t, ApplyOverrides(r, map[string]config.SiteOverride{
		"naver": {PriceSelectors: []string{"div[["}},
	}))

	set, _ := r.Get("naver")
	assert.NotContains(t, set.PriceSelectors, "div[[")
}
