package ports

// IDGenerator supplies unique identifiers for postings, entries and
// payments. Injected rather than called ambiently so allocation and
// linking logic stays deterministic under test.
type IDGenerator interface {
	NewID() string
}
