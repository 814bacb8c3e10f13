package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// NextSeq returns the next event sequence number.
func NextSeq() uint64 { return seq.Add(1) }

// NextSpanID returns a fresh span ID. IDs start at 1; 0 means "no span".
func NextSpanID() uint64 { return spanIDs.Add(1) }

// goroutineID reads N from the "goroutine N [running]:" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	fields := bytes.Fields(buf[:runtime.Stack(buf[:], false)])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Span is one timed part of a run: the command, a pipeline stage or a single
// input. A span whose scope the tracer filters out is inert, and so are the
// points recorded under it.
type Span struct {
	tracer  Tracer
	sc      SpanContext
	gid     uint64
	started time.Time
	extra   map[string]string
	ended   atomic.Bool
}

var inert = &Span{tracer: Nop}

// Start opens a span below the one carried by ctx, using the tracer from
// ctx. The returned context carries the new span; when the span is filtered
// out ctx is returned unchanged so children attach to the nearest emitted
// ancestor.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID)
	if !s.sc.Valid() {
		return ctx, s
	}
	return WithSpanContext(ctx, s.sc), s
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		sc:      SpanContext{SpanID: NextSpanID(), ParentID: parent, Scope: scope, Name: name},
		gid:     goroutineID(),
		started: time.Now(),
	}
	s.emit(KindSpanBegin, s.started, "", nil)
	open.add(s)
	return s
}

// End emits the end event once and returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if !s.live() || s.ended.Swap(true) {
		return 0
	}
	open.remove(s.sc.SpanID)
	now := time.Now()
	s.emit(KindSpanEnd, now, detail, s.extra)
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// Point records an instant event under s, such as one parsed type under its
// input. It is dropped when the tracer filters out scope.
func (s *Span) Point(scope Scope, name, detail string) {
	if !s.live() || !s.tracer.Level().ShouldEmit(scope) {
		return
	}
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   NextSpanID(),
		ParentID: s.sc.SpanID,
		GID:      goroutineID(),
		Name:     name,
		Detail:   detail,
	})
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.sc.SpanID
}

// Context returns the propagation record of s.
func (s *Span) Context() SpanContext {
	if s == nil {
		return SpanContext{}
	}
	return s.sc
}

func (s *Span) live() bool {
	return s != nil && s.sc.Valid() && s.tracer != nil && s.tracer.Enabled()
}

func (s *Span) emit(kind Kind, at time.Time, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.sc.Scope,
		SpanID:   s.sc.SpanID,
		ParentID: s.sc.ParentID,
		GID:      s.gid,
		Name:     s.sc.Name,
		Detail:   detail,
		Extra:    extra,
	})
}

// open tracks emitted spans that have not ended yet, for heartbeats.
var open = openSpans{spans: make(map[uint64]*Span)}

type openSpans struct {
	mu    sync.Mutex
	spans map[uint64]*Span
}

func (o *openSpans) add(s *Span) {
	o.mu.Lock()
	o.spans[s.sc.SpanID] = s
	o.mu.Unlock()
}

func (o *openSpans) remove(id uint64) {
	o.mu.Lock()
	delete(o.spans, id)
	o.mu.Unlock()
}

// innermost returns the open span with the finest scope, latest started on
// ties. Parallel inputs share the input scope, so the newest one wins.
func (o *openSpans) innermost() (SpanContext, time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var best *Span
	for _, s := range o.spans {
		if best == nil || s.sc.Scope > best.sc.Scope ||
			(s.sc.Scope == best.sc.Scope && s.started.After(best.started)) {
			best = s
		}
	}
	if best == nil {
		return SpanContext{}, time.Time{}, false
	}
	return best.sc, best.started, true
}
