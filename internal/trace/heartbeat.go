package trace

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// heartbeatShown is how many open spans a heartbeat names.
const heartbeatShown = 3

// Heartbeat periodically reports the spans still open. A trace that keeps
// beating with the same oldest span points at a rule stuck on one file.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts the heartbeat goroutine. It returns nil when the
// tracer is disabled or interval is not positive; Stop accepts nil.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for beat := 1; ; beat++ {
		select {
		case <-h.stop:
			return
		case at := <-ticker.C:
			h.tracer.Emit(beatEvent(beat, at))
		}
	}
}

func beatEvent(beat int, at time.Time) *Event {
	count, labels := open.oldest(heartbeatShown, at)
	return &Event{
		Time:   at,
		Seq:    nextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: strings.Join(labels, "; "),
		Extra: map[string]string{
			"beat": strconv.Itoa(beat),
			"open": strconv.Itoa(count),
		},
	}
}

// Stop ends the goroutine and waits for it. It is safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
