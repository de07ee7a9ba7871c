// Package runtime wires the per-user workers into a supervised session and
// owns their lifecycle: heartbeat, event fan-out, history trimming, the
// notification push stream, and the followed-topic poller.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"moonhall/chat"
	"moonhall/contract"
	"moonhall/docstore"
	"moonhall/domain/event"
	"moonhall/notify"
	"moonhall/presence"
	"moonhall/projection"
	"moonhall/runtime/workers"
)

const (
	eventCapacity = 64
	trimCapacity  = 16
)

// Session is one user's live connection to the platform. Start spins up the
// background workers under a supervisor; SetVisible pauses and resumes the
// poller as the user moves the app to and from the foreground; Stop tears
// everything down and waits for the workers to drain.
type Session struct {
	log        *slog.Logger
	store      docstore.Store
	userID     string
	supervisor *workers.Supervisor
	events     chan event.DomainEvent
	trims      chan string
	feed       *projection.Feed

	tracker *presence.Tracker
	history *chat.History
	sinks   []contract.EventSink

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	pollCancel context.CancelFunc
	done       chan struct{}
}

func NewSession(
	log *slog.Logger,
	store docstore.Store,
	tracker *presence.Tracker,
	history *chat.History,
	userID string,
	restartInterval time.Duration,
	sinks ...contract.EventSink,
) *Session {
	return &Session{
		log:        log,
		store:      store,
		userID:     userID,
		supervisor: workers.NewSupervisor(log, restartInterval),
		events:     make(chan event.DomainEvent, eventCapacity),
		trims:      make(chan string, trimCapacity),
		feed:       projection.NewFeed(userID, notify.FeedLimit),
		tracker:    tracker,
		history:    history,
		sinks:      sinks,
	}
}

// Feed exposes the live notification projection maintained by the push worker.
func (s *Session) Feed() *projection.Feed { return s.feed }

// Start launches the session workers. It returns immediately; the supervisor
// keeps them alive until Stop or the parent context ends.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	s.ctx = sessionCtx
	s.cancel = cancel
	s.done = make(chan struct{})

	fanout := workers.NewEventFanout(s.log, s.events).Add(s.sinks...)
	s.supervisor.Add(
		workers.NewHeartbeatWorker(s.log, s.tracker, s.userID),
		fanout,
		workers.NewTrimWorker(s.log, s.history, s.trims),
		workers.NewPushWorker(s.log, s.store, s.feed),
	)

	go func() {
		defer close(s.done)
		s.supervisor.Run(sessionCtx)
	}()
	s.startPollerLocked()

	s.log.Info("Session started", "user", s.userID)
}

// Stop cancels every worker and blocks until the supervisor has drained.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.pollCancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("Session stopped", "user", s.userID)
}

// SetVisible pauses the poller while the app is backgrounded and restarts it
// on return. A restarted poller takes a fresh watermark and sweeps
// immediately, so foregrounding never replays activity from the hidden span.
func (s *Session) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	if !visible {
		if s.pollCancel != nil {
			s.pollCancel()
			s.pollCancel = nil
			s.log.Debug("Poller paused", "user", s.userID)
		}
		return
	}
	if s.pollCancel == nil {
		s.startPollerLocked()
		s.log.Debug("Poller resumed", "user", s.userID)
	}
}

func (s *Session) startPollerLocked() {
	pollCtx, cancel := context.WithCancel(s.ctx)
	s.pollCancel = cancel
	poller := workers.NewWatermarkPoller(s.log, s.store, s.events, s.userID)
	s.supervisor.Start(pollCtx, poller)
}

// Dispatch hands a domain event to the fan-out worker. The send never
// blocks a caller: when the buffer is full the event is dropped and logged.
func (s *Session) Dispatch(evt event.DomainEvent) {
	select {
	case s.events <- evt:
	default:
		s.log.Warn("Event buffer full, event dropped", "kind", evt.Kind())
	}
}

// RequestTrim queues a background history prune for a conversation.
func (s *Session) RequestTrim(conversationID string) {
	select {
	case s.trims <- conversationID:
	default:
		// A pass is already pending, the next one covers this overflow too
	}
}
