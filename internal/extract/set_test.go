package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategySetMatches(t *testing.T) {
	s := testSet()
	assert.True(t, s.Matches("https://www.testshop.example/p/1"))
	assert.True(t, s.Matches("https://TESTSHOP.EXAMPLE/p/1"))
	assert.False(t, s.Matches("https://example.com/testshop.example"))
}

func TestStrategySetValidate(t *testing.T) {
	assert.NoError(t, testSet().Validate())

	bad := testSet()
	bad.SizeDropdowns = append(bad.SizeDropdowns, Dropdown{Options: "li:nth-child("})
	assert.Error(t, bad.Validate())

	api := testSet()
	api.SizeAPI = &SizeAPI{URLTemplate: "https://api.example/goods"}
	assert.Error(t, api.Validate())

	shoes := testSet()
	shoes.ShoeScan = &ShoeScan{Min: 300, Max: 230, Step: 5}
	assert.Error(t, shoes.Validate())
}

func TestDeriveGoodsID(t *testing.T) {
	s := testSet()
	assert.Equal(t, "", s.DeriveGoodsID("https://testshop.example/p/1"))

	s.GoodsID = regexp.MustCompile(`/p/(\d+)`)
	assert.Equal(t, "12", s.DeriveGoodsID("https://testshop.example/p/12?x=1"))

	api := &SizeAPI{URLTemplate: "https://api.example/goods/%s/size"}
	assert.Equal(t, "https://api.example/goods/a%2Fb/size", api.URL("a/b"))
}
