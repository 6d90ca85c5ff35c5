package extract

import (
	"testing"

	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCleanOptionName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"M", "M"},
		{"  L (품절)  ", "L"},
		{"XL [+2,000원]", "XL"},
		{"270 (3개 남음)", "270"},
		{"FREE 재입고 알림", "FREE"},
		{"S\n잔여 2개", "S"},
		{"Black Sold Out", "Black"},
		{"M - 품절", "M"},
		{"L / 품절", "L"},
		{"XL | 재입고 알림", "XL"},
		{"260: 일시품절", "260"},
		{"S/M", "S/M"},
		{"옵션을 선택하세요", ""},
		{"Select size", ""},
		{"--", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanOptionName(tt.raw))
		})
	}
}

func TestHasSoldOutKeyword(t *testing.T) {
	assert.True(t, HasSoldOutKeyword("260 일시품절", SoldOutKeywords))
	assert.True(t, HasSoldOutKeyword("Out Of Stock", SoldOutKeywords))
	assert.True(t, HasSoldOutKeyword("재입고 알림 신청", SoldOutKeywords))
	assert.False(t, HasSoldOutKeyword("3개 남음", SoldOutKeywords))
}

func TestReadOptionElements(t *testing.T) {
	els := elements([]*fakeElement{
		el("S"),
		el("M", "aria-disabled", "true"),
		el("L", "class", "opt is-soldout"),
		el("XL", "disabled", ""),
		el("XXL (품절)"),
		el("S"),
		el("", "data-value", "3XL"),
		el("사이즈 선택"),
	})

	assert.Equal(t, []models.SizeOption{
		{Name: "S"},
		{Name: "M", IsSoldOut: true},
		{Name: "L", IsSoldOut: true},
		{Name: "XL", IsSoldOut: true},
		{Name: "XXL", IsSoldOut: true},
		{Name: "3XL"},
	}, readOptionElements(els))
}
