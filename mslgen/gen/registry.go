package gen

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Generator)
)

// Register makes a generator available under its target name. Target
// generator packages call this from init; importing a generator package
// is what enables its target.
func Register(g Generator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name := g.Name()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("gen: generator %q registered twice", name))
	}
	registry[name] = g
}

// Get returns the generator registered under target, or false if none.
func Get(target string) (Generator, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	g, ok := registry[target]
	return g, ok
}

// Targets returns the registered target names, sorted.
func Targets() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
