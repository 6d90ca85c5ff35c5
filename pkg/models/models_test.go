package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRecord_JSONOmitsUnresolvedOptionals(t *testing.T) {
	rec := NewProductRecord("musinsa")
	rec.Title = "Tee"

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.NotContains(t, out, "couponPrice")
	assert.NotContains(t, out, "actualSizes")
	assert.Equal(t, []any{}, out["sizes"])
	assert.Equal(t, []any{}, out["colors"])
	assert.Equal(t, "active", out["status"])
}

func TestProductRecord_Clone(t *testing.T) {
	coupon := 9000
	rec := NewProductRecord("musinsa")
	rec.CouponPrice = &coupon
	rec.Sizes = append(rec.Sizes, SizeOption{Name: "M"})
	rec.ActualSizes = map[string]map[string]float64{"M": {"length": 70}}

	cp := rec.Clone()
	*cp.CouponPrice = 1
	cp.Sizes[0].Name = "L"
	cp.ActualSizes["M"]["length"] = 1

	assert.Equal(t, 9000, *rec.CouponPrice)
	assert.Equal(t, "M", rec.Sizes[0].Name)
	assert.Equal(t, 70.0, rec.ActualSizes["M"]["length"])
}
