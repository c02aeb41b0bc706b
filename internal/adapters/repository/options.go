package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRetention bounds the number of stored runs. The oldest run and its
// hotspots are evicted first. Values <= 0 disable the bound.
func WithRetention(runs int) Option {
	return func(s *MemoryStore) {
		s.retention = runs
	}
}
