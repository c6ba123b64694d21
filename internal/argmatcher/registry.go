package argmatcher

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names to their grammars. It is an explicit
// process-scoped object passed to the completion entry point, so tests
// construct isolated instances. The engine runs on a single cooperative
// thread, but registration can be triggered from generator callbacks
// during the same tick, so the map is guarded anyway.
type Registry struct {
	mu       sync.RWMutex
	matchers map[string]*Matcher
}

// NewRegistry creates an empty grammar registry.
func NewRegistry() *Registry {
	return &Registry{matchers: make(map[string]*Matcher)}
}

// Register binds a grammar to a command name. Registering a name that
// already has a grammar merges into the existing one instead of
// replacing it: slot 1's candidates are extended and the flag pools
// are unioned, while slots 2..N of the existing grammar are kept.
// The shallow merge is a documented limitation, not an accident.
func (r *Registry) Register(command string, m *Matcher) error {
	if command == "" {
		return fmt.Errorf("argmatcher: cannot register a grammar without a command name")
	}
	if m == nil {
		return fmt.Errorf("argmatcher: cannot register a nil grammar for %q", command)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.matchers[command]; ok {
		existing.merge(m)
		return nil
	}
	r.matchers[command] = m
	return nil
}

// Lookup returns the grammar for a command, or nil.
func (r *Registry) Lookup(command string) *Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matchers[command]
}

// Commands returns the registered command names, sorted.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.matchers))
	for name := range r.matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every registered grammar. Grammars live for the process
// lifetime otherwise; the script layer rebuilds its registrations each
// session.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchers = make(map[string]*Matcher)
}
