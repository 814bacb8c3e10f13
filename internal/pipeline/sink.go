package pipeline

import "sync"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// lockedSink serialises events coming from parallel parse workers.
type lockedSink struct {
	mu   sync.Mutex
	sink ProgressSink
}

func (s *lockedSink) OnEvent(evt Event) {
	if s == nil || s.sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.OnEvent(evt)
}
