package store

// OpenMemory opens an in-memory database with the full schema applied.
// This is only intended for use in tests.
func OpenMemory() (*DB, error) {
	return openPath(":memory:")
}
