package index

// PageIndex defines the page index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PageIndex interface {
	Replace(buildID string, rows []PageRow) error
	GetPage(path string) (*PageRow, error)
	Count() (int, error)
	BuildID() (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
