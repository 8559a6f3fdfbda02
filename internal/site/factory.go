package site

// Factory creates a handler instance for one configured handler name.
type Factory func(s *Site, name string, options map[string]any, extensions []string) (Handler, error)

// Factories maps handler type names, as used by the "handler" key of a
// handler's configuration, to constructors.
type Factories map[string]Factory

// Register adds a handler type. A later registration replaces an earlier one.
func (f Factories) Register(typ string, fn Factory) Factories {
	f[typ] = fn
	return f
}

// TextFactory creates plain TextHandlers. Such a handler has no render
// variants, so its pages render empty unless they change handler.
func TextFactory(s *Site, name string, options map[string]any, extensions []string) (Handler, error) {
	return NewTextHandler(s, name, options, extensions), nil
}
