// Package site holds the registered per-site strategy sets and picks the
// one that serves a URL.
package site

import (
	"fmt"
	"sort"
	"sync"

	"github.com/law-makers/goodscrawl/internal/extract"
)

// Registry maps site names to strategy sets
type Registry struct {
	mu    sync.RWMutex
	sets  map[string]*extract.StrategySet
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*extract.StrategySet)}
}

// Default returns a registry holding every built-in site
func Default() *Registry {
	r := NewRegistry()
	for _, s := range []*extract.StrategySet{Musinsa(), Naver()} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register validates set and adds it, replacing a set of the same name
func (r *Registry) Register(set *extract.StrategySet) error {
	if set == nil {
		return fmt.Errorf("nil strategy set")
	}
	if err := set.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[set.Name]; !ok {
		r.order = append(r.order, set.Name)
	}
	r.sets[set.Name] = set
	return nil
}

// Get returns the set registered under name
func (r *Registry) Get(name string) (*extract.StrategySet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[name]
	return s, ok
}

// Names lists registered site names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sets))
	for n := range r.sets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Select returns the first registered set whose host predicates match
// rawURL. No page is touched.
func (r *Registry) Select(rawURL string) (*extract.StrategySet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if s := r.sets[name]; s.Matches(rawURL) {
			return s, nil
		}
	}
	return nil, extract.NewError(extract.CodeUnsupportedSite, "no strategy set for this site", nil).
		WithDetail("url", rawURL)
}
