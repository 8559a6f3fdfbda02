// Package storage defines the file-system roots a site build reads and writes.
package storage

// Provider is the interface for root-relative file operations. Paths use
// forward slashes; a leading "/" names the root itself.
type Provider interface {
	// Root returns the absolute directory path.
	Root() string
	// Walk returns every file under dir in lexical order, as slash-rooted
	// paths relative to the root. With skipHidden, files and directories whose
	// name starts with "." or "_" are left out.
	Walk(dir string, skipHidden bool) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether path names an existing directory.
	Exists(path string) bool
}
