package dedupe

// Option configures a Deduper built by New.
type Option func(*fifoDeduper)

// WithMaxSize bounds the number of remembered request IDs. Once full, the
// oldest claim is forgotten first. Values <= 0 disable the bound.
func WithMaxSize(maxSize int) Option {
	return func(d *fifoDeduper) {
		d.maxSize = maxSize
	}
}
