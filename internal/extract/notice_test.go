package extract

import (
	"testing"

	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeValue(t *testing.T) {
	tests := []struct {
		row    string
		labels []string
		want   string
		ok     bool
	}{
		{"치수\nS, M, L", []string{"치수"}, "S, M, L", true},
		{"색상: 블랙 / 화이트", []string{"색상"}, "블랙 / 화이트", true},
		{"색상：네이비", []string{"색상"}, "네이비", true},
		{"치수\n상세페이지 참조", []string{"치수"}, "", false},
		{"제조국\n대한민국", []string{"치수"}, "", false},
		{"치수", []string{"치수"}, "", false},
		{"치수\tS, M, L", []string{"치수"}, "S, M, L", true},
		{"치수\tS, M\t색상\t블랙", []string{"치수"}, "S, M", true},
		{"색상\t블랙\t치수\tS", []string{"치수"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.row, func(t *testing.T) {
			got, ok := NoticeValue(tt.row, tt.labels)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNoticeSizesOnlyWhenSoldOut(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	panel := &fakeElement{children: map[string][]*fakeElement{
		"tr": {el("소재\n면 100%"), el("치수\nS / M\nL")},
	}}
	p.set(".notice", panel)

	c := newTestContext(t, p, testSet())
	_, err := noticeSizes(c)
	assert.Error(t, err)

	c.soldOut = true
	res, err := noticeSizes(c)
	require.NoError(t, err)
	assert.Equal(t, []models.SizeOption{
		{Name: "S", IsSoldOut: true}, {Name: "M", IsSoldOut: true}, {Name: "L", IsSoldOut: true},
	}, res.Sizes)
}

func TestNoticeOpensCollapsedPanel(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	toggle := el("상품정보 제공고시")
	toggle.onClick = func() {
		p.set(".notice", &fakeElement{children: map[string][]*fakeElement{
			"tr": {el("색상\n차콜, 오트밀")},
		}})
	}
	p.set(".notice-toggle", toggle)

	c := newTestContext(t, p, testSet())
	c.soldOut = true
	colors, err := noticeColors(c)
	require.NoError(t, err)
	assert.Equal(t, 1, toggle.clicks)
	assert.Equal(t, []models.ColorOption{
		{Name: "차콜", IsSoldOut: true}, {Name: "오트밀", IsSoldOut: true},
	}, colors)
}

func TestNoticeRowWithSeveralPairs(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	row := &fakeElement{
		text: "치수\nS, M\n색상\n블랙",
		children: map[string][]*fakeElement{
			"th, dt": {el("치수"), el("색상")},
			"td, dd": {el("S, M"), el("블랙")},
		},
	}
	p.set(".notice", &fakeElement{children: map[string][]*fakeElement{"tr": {row}}})

	c := newTestContext(t, p, testSet())
	c.soldOut = true

	res, err := noticeSizes(c)
	require.NoError(t, err)
	assert.Equal(t, []models.SizeOption{{Name: "S", IsSoldOut: true}, {Name: "M", IsSoldOut: true}}, res.Sizes)

	colors, err := noticeColors(c)
	require.NoError(t, err)
	assert.Equal(t, []models.ColorOption{{Name: "블랙", IsSoldOut: true}}, colors)
}

func TestNoticeRowCellsWithoutLabel(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	row := &fakeElement{
		text: "치수 참고\n소재\n면",
		children: map[string][]*fakeElement{
			"th, dt": {el("소재")},
			"td, dd": {el("면 100%")},
		},
	}
	p.set(".notice", &fakeElement{children: map[string][]*fakeElement{"tr": {row}}})

	c := newTestContext(t, p, testSet())
	c.soldOut = true
	_, err := noticeSizes(c)
	assert.Error(t, err, "row text is not consulted when the row has paired cells")
}
