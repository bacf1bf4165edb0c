// Package scheduler emits the periodic auto-sync signal.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/logging"
)

// DefaultInterval is the auto-sync period used when none is configured.
const DefaultInterval = 5 * time.Minute

// Event is one auto-sync signal.
type Event struct {
	At time.Time `json:"at"`
}

// Ticker fans periodic events out to subscribers. A subscriber that has not
// drained its previous event misses the next one; ticks never queue up.
type Ticker struct {
	mu       sync.Mutex
	interval time.Duration
	subs     map[int]chan Event
	nextID   int
	cancel   context.CancelFunc
	done     chan struct{}
	now      func() time.Time
	log      logging.Logger
}

func NewTicker(interval time.Duration, log logging.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		interval: interval,
		subs:     make(map[int]chan Event),
		now:      time.Now,
		log:      log.With("module", "scheduler"),
	}
}

// Start runs the ticker until ctx ends or Stop is called. Starting a running
// ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	t.startLocked(ctx)
}

func (t *Ticker) startLocked(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done

	interval := t.interval
	go func() {
		defer close(done)
		tk := time.NewTicker(interval)
		defer tk.Stop()

		t.log.Info(ctx, "auto-sync timer started", "interval", interval.String())
		for {
			select {
			case <-tk.C:
				t.Tick()
			case <-ctx.Done():
				t.mu.Lock()
				if t.done == done {
					t.cancel, t.done = nil, nil
				}
				t.mu.Unlock()
				t.log.Info(context.Background(), "auto-sync timer stopped")
				return
			}
		}
	}()
}

// Stop halts the ticker and waits for its goroutine to exit.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the timer goroutine is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Ticker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// Reset changes the interval. A running ticker is restarted under ctx.
func (t *Ticker) Reset(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	running := t.Running()
	if running {
		t.Stop()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = interval
	if running && t.cancel == nil {
		t.startLocked(ctx)
	}
}

// Tick delivers one event to every subscriber immediately.
func (t *Ticker) Tick() {
	ev := Event{At: t.now()}

	t.mu.Lock()
	defer t.mu.Unlock()
	for id, ch := range t.subs {
		select {
		case ch <- ev:
		default:
			t.log.Debug(context.Background(), "subscriber busy, tick dropped", "subscriber", id)
		}
	}
}

// Subscribe returns a channel of events and a function that unsubscribes
// and closes it.
func (t *Ticker) Subscribe() (<-chan Event, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan Event, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
}
