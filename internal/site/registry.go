package site

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/ForestKatsch/apogee-ssg/internal/apperr"
)

// Registry maps extensions to content handlers.
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]Handler
	order      []string
	extensions map[string]string // extension -> handler name
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:   map[string]Handler{},
		extensions: map[string]string{},
	}
}

// Add registers h, replacing a handler of the same name. Every extension of
// h must be free or already owned by the handler being replaced; nothing is
// changed otherwise. Once inserted, @render is installed and h.Register runs.
func (r *Registry) Add(ctx context.Context, h Handler) error {
	name := h.Name()
	exts := h.Extensions()

	r.mu.Lock()
	for _, ext := range exts {
		if owner, ok := r.extensions[ext]; ok && owner != name {
			r.mu.Unlock()
			return apperr.New(apperr.KindExtensionConflict,
				"content handler '%s' declares existing extension '%s'", name, ext).
				With("handler", name).With("extension", ext).With("owner", owner)
		}
	}
	if _, ok := r.handlers[name]; ok {
		r.removeLocked(name)
	}
	r.handlers[name] = h
	r.order = append(r.order, name)
	for _, ext := range exts {
		r.extensions[ext] = name
	}
	r.mu.Unlock()

	if err := h.base().register(ctx, h); err != nil {
		r.mu.Lock()
		r.removeLocked(name)
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Registry) removeLocked(name string) {
	delete(r.handlers, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	for ext, owner := range r.extensions {
		if owner == name {
			delete(r.extensions, ext)
		}
	}
}

// ForExtension returns the handler claiming ext. The match is exact and
// case-sensitive and includes the leading dot.
func (r *Registry) ForExtension(ext string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.extensions[ext]
	if !ok {
		return nil, apperr.New(apperr.KindUnknownExtension, "no content handler for extension '%s'", ext).
			With("extension", ext)
	}
	return r.handlers[name], nil
}

// HasExtension reports whether ext is claimed.
func (r *Registry) HasExtension(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.extensions[ext]
	return ok
}

// Get returns the handler registered as name.
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	if !ok {
		return nil, apperr.New(apperr.KindUnknownHandler,
			"cannot find handler named '%s' (is it defined in the site configuration?)", name).
			With("handler", name)
	}
	return h, nil
}

// Has reports whether a handler is registered as name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// RemoveAll drops every handler and extension.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = map[string]Handler{}
	r.extensions = map[string]string{}
	r.order = nil
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name])
	}
	return out
}

// Extensions returns the claimed extensions ordered by length, then text.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		out = append(out, ext)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return out
}
