// Package handlers lists the compiled-in content handler types.
package handlers

import (
	"github.com/ForestKatsch/apogee-ssg/internal/handlers/markdown"
	"github.com/ForestKatsch/apogee-ssg/internal/handlers/passthrough"
	"github.com/ForestKatsch/apogee-ssg/internal/site"
)

// Text is the type name of the bare text handler.
const Text = "text"

// Register adds the built-in handler types to f.
func Register(f site.Factories) site.Factories {
	return f.
		Register(markdown.Type, markdown.New).
		Register(passthrough.Type, passthrough.New).
		Register(Text, site.TextFactory)
}

// Defaults returns a fresh table of the built-in handler types.
func Defaults() site.Factories {
	return Register(site.Factories{})
}
