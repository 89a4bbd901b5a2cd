package imaging

import "sync/atomic"

// ProgressFunc receives coarse progress notifications from a pixel pass.
//
// done counts completed units (usually rows) out of total. Passes that fan
// out across goroutines may call it concurrently, so implementations must be
// safe for concurrent use. It is a best-effort sink: returning from it never
// pauses or cancels the pass.
type ProgressFunc func(done, total int)

// Options holds settings shared by all pixel passes.
type Options struct {
	Progress ProgressFunc
}

// Option configures a pixel pass.
type Option func(*Options)

// WithProgress registers a progress sink for a pass.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// NewOptions applies opts over the zero Options.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Tracker returns a counter that reports to the configured sink against the
// given total. A nil sink yields a tracker whose Add is a no-op.
func (o Options) Tracker(total int) *Tracker {
	return &Tracker{fn: o.Progress, total: total}
}

// Tracker accumulates completed units and forwards the running count to a
// ProgressFunc. It is safe for concurrent use.
type Tracker struct {
	fn    ProgressFunc
	total int
	done  atomic.Int64
}

// Add records n more completed units.
func (t *Tracker) Add(n int) {
	if t.fn == nil {
		return
	}
	done := t.done.Add(int64(n))
	t.fn(int(done), t.total)
}
