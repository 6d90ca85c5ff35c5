package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	for _, u := range []string{
		"http://example.com",
		"https://www.musinsa.com/products/3674341",
	} {
		assert.NoError(t, ValidateURL(u), u)
	}

	for _, u := range []string{"ftp://example.com", "//example.com", "http:///", "::"} {
		assert.Error(t, ValidateURL(u), u)
	}
}

func TestResolveURL(t *testing.T) {
	base := "https://www.musinsa.com/products/1?color=black"
	assert.Equal(t, "https://www.musinsa.com/products/2", ResolveURL(base, "/products/2"))
	assert.Equal(t, "https://www.musinsa.com/products/3", ResolveURL(base, "3"))
	assert.Equal(t, "https://other.com/x", ResolveURL(base, "https://other.com/x"))
	assert.Equal(t, "https://image.msscdn.net/a.jpg", ResolveURL(base, "//image.msscdn.net/a.jpg"))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t,
		Canonical("https://WWW.musinsa.com/products/1/"),
		Canonical("http://www.musinsa.com/products/1?utm_source=x#reviews"),
	)
	assert.NotEqual(t, Canonical("https://www.musinsa.com/products/1"), Canonical("https://www.musinsa.com/products/2"))
}
