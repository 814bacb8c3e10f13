package trace

import (
	"context"
	"fmt"
	"time"
)

// Heartbeat periodically names the innermost open span, so a trace of a slow
// run shows whether it is still inside cargo or stuck in a later stage.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat emits a heartbeat through tracer every interval until Stop.
// It returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, tracer, interval)
	return h
}

func (h *Heartbeat) run(ctx context.Context, tracer Tracer, interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	started := time.Now()
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tracer.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: heartbeatDetail(n, now, started),
			})
		}
	}
}

// heartbeatDetail reads like "#3 after 30s, in compile for 28s".
func heartbeatDetail(n int, now, started time.Time) string {
	detail := fmt.Sprintf("#%d after %s", n, now.Sub(started).Truncate(time.Second))
	if sc, since, ok := open.innermost(); ok {
		detail += fmt.Sprintf(", in %s for %s", sc.Name, now.Sub(since).Truncate(time.Second))
	}
	return detail
}

// Stop ends the heartbeat and waits for its goroutine. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
