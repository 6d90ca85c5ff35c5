package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAwaitReadyStructured(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	p.globals["window.__STATE__"] = map[string]interface{}{"product": "x"}
	p.readyAfter = 2

	c := newTestContext(t, p, testSet())
	assert.Equal(t, ReadyStructured, AwaitReady(c, 5, time.Millisecond))
	assert.Equal(t, 3, p.evals)
}

func TestAwaitReadyDOM(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	p.set(".title", el("상품"))

	c := newTestContext(t, p, testSet())
	assert.Equal(t, ReadyDOM, AwaitReady(c, 5, time.Millisecond))
}

func TestAwaitReadyIgnoresHiddenSignals(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	hidden := el("상품")
	hidden.hidden = true
	p.set(".title", hidden)

	c := newTestContext(t, p, testSet())
	start := time.Now()
	assert.Equal(t, ReadyTimeout, AwaitReady(c, 3, time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "timeout", ReadyTimeout.String())
}

func TestAwaitReadyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newFakePage("https://testshop.example/p/1")
	c := NewContext(ctx, p, testSet(), p.url)

	start := time.Now()
	assert.Equal(t, ReadyTimeout, AwaitReady(c, 100, time.Second))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPollFind(t *testing.T) {
	p := newFakePage("https://testshop.example/p/1")
	c := newTestContext(t, p, testSet())

	_, ok := PollFind(c, []string{".late"}, 2, time.Millisecond)
	assert.False(t, ok)

	p.set(".late", el("a"), &fakeElement{text: "b", hidden: true})
	els, ok := PollFind(c, []string{".missing", ".late"}, 2, time.Millisecond)
	assert.True(t, ok)
	assert.Len(t, els, 1)
}
