// Package transfer contains the upload and delete orchestrators: they drive
// a blob transfer end-to-end, relay progress, synthesize and persist the
// metadata record, and surface partial failures with enough context for the
// caller to retry just the failed phase. No failure is retried internally.
package transfer

import "sync"

// ProgressEvent reports the state of an in-flight blob transfer.
type ProgressEvent struct {
	BytesTransferred int64
	TotalBytes       int64
}

// Percent returns the completed share in [0, 100], rounded down.
// It reports 0 when the total size is unknown.
func (e ProgressEvent) Percent() int {
	if e.TotalBytes <= 0 {
		return 0
	}
	p := int(e.BytesTransferred * 100 / e.TotalBytes)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Sink consumes the notifications of a single upload. Exactly one terminal
// call (Complete or Fail) is delivered per upload, and no Progress call
// follows it. Implementations should not block for long; the producer is
// paused while a notification is being handled.
type Sink interface {
	Progress(ev ProgressEvent)
	Complete(res *Result)
	Fail(err error)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) Progress(ProgressEvent) {}
func (NopSink) Complete(*Result)       {}
func (NopSink) Fail(error)             {}

// sinkGuard enforces the delivery contract on behalf of the orchestrator:
// monotonically non-decreasing progress, a single terminal notification,
// and silence afterwards.
type sinkGuard struct {
	mu        sync.Mutex
	sink      Sink
	done      bool
	lastBytes int64
}

func newSinkGuard(sink Sink) *sinkGuard {
	return &sinkGuard{sink: sink}
}

func (g *sinkGuard) progress(written, total int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done || written < g.lastBytes {
		return
	}
	// A source larger than its declared size can over-count; the event
	// never reports more than the total.
	if total >= 0 && written > total {
		written = total
	}
	g.lastBytes = written
	g.sink.Progress(ProgressEvent{BytesTransferred: written, TotalBytes: total})
}

func (g *sinkGuard) complete(res *Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return
	}
	g.done = true
	g.sink.Complete(res)
}

func (g *sinkGuard) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return
	}
	g.done = true
	g.sink.Fail(err)
}
