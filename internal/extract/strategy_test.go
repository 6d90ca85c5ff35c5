package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstAcceptedOrder(t *testing.T) {
	c := newTestContext(t, newFakePage("https://testshop.example/p/1"), testSet())
	var ran []string
	strategies := []Strategy[int]{
		{Name: "a", Run: func(*Context) (int, error) { ran = append(ran, "a"); return 0, notFound("a") }},
		{Name: "b", Run: func(*Context) (int, error) { ran = append(ran, "b"); return 7, nil }},
		{Name: "c", Run: func(*Context) (int, error) { ran = append(ran, "c"); return 9, nil }},
	}

	v, name, ok := FirstAccepted(c, "test", strategies)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, "b", name)
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestFirstAcceptedRecoversPanics(t *testing.T) {
	c := newTestContext(t, newFakePage("https://testshop.example/p/1"), testSet())
	strategies := []Strategy[string]{
		{Name: "boom", Run: func(*Context) (string, error) { panic("nil map") }},
		{Name: "ok", Run: func(*Context) (string, error) { return "fine", nil }},
	}

	v, name, ok := FirstAccepted(c, "test", strategies)
	assert.True(t, ok)
	assert.Equal(t, "fine", v)
	assert.Equal(t, "ok", name)
}

func TestFirstAcceptedExhausted(t *testing.T) {
	c := newTestContext(t, newFakePage("https://testshop.example/p/1"), testSet())
	_, _, ok := FirstAccepted(c, "test", []Strategy[int]{
		{Name: "a", Run: func(*Context) (int, error) { return 0, errors.New("no") }},
	})
	assert.False(t, ok)
}

func TestFirstAcceptedStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newFakePage("https://testshop.example/p/1")
	c := NewContext(ctx, p, testSet(), p.url)

	second := false
	_, _, ok := FirstAccepted(c, "test", []Strategy[int]{
		{Name: "a", Run: func(*Context) (int, error) { cancel(); return 0, notFound("a") }},
		{Name: "b", Run: func(*Context) (int, error) { second = true; return 1, nil }},
	})
	assert.False(t, ok)
	assert.False(t, second)
}
