package extract

import (
	"testing"

	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestAssembleAlignsSizesWithMeasurements(t *testing.T) {
	rec := models.NewProductRecord("testshop")
	rec.Sizes = []models.SizeOption{{Name: "L"}, {Name: "FREE", IsSoldOut: true}, {Name: "M", IsSoldOut: true}, {Name: "L"}}
	rec.ActualSizes = map[string]map[string]float64{
		"M":  {"총장": 70},
		"L":  {"총장": 72},
		"XL": {"총장": 74},
	}

	out := Assemble(nil, rec)
	assert.Equal(t, []models.SizeOption{{Name: "L"}, {Name: "M"}, {Name: "XL"}}, out.Sizes)
	assert.Len(t, out.ActualSizes, 3)
}

func TestAssembleDefaultSize(t *testing.T) {
	c := newTestContext(t, newFakePage("https://testshop.example/p/1"), testSet())

	rec := Assemble(c, models.NewProductRecord("testshop"))
	assert.Empty(t, rec.Sizes, "no structured data: no default size")

	c.structured = &Structured{Title: "머플러"}
	rec = models.NewProductRecord("testshop")
	rec.Status = models.StatusSoldOut
	rec = Assemble(c, rec)
	assert.Equal(t, []models.SizeOption{{Name: DefaultSizeName, IsSoldOut: true}}, rec.Sizes)
}

func TestAssembleNormalizes(t *testing.T) {
	zero := 0
	rec := &models.ProductRecord{
		Site:        "testshop",
		Title:       "[스토어] 추천 상품 니트\n베스트",
		Image:       "//cdn.example/x.jpg",
		CouponPrice: &zero,
		ActualSizes: map[string]map[string]float64{},
	}

	out := Assemble(nil, rec)
	assert.Equal(t, "니트 베스트", out.Title)
	assert.Equal(t, "https://cdn.example/x.jpg", out.Image)
	assert.Equal(t, models.StatusActive, out.Status)
	assert.Nil(t, out.CouponPrice)
	assert.Nil(t, out.ActualSizes)
	assert.NotNil(t, out.Sizes)
	assert.NotNil(t, out.Colors)
}
