package server

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/drawserver/broadcast"
	"github.com/wfunc/drawserver/gateway"
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/models"
	"github.com/wfunc/drawserver/monitor"
	"github.com/wfunc/drawserver/network"
	"github.com/wfunc/drawserver/room"
	"github.com/wfunc/drawserver/session"
	"github.com/wfunc/drawserver/timer"
)

var ErrHubStopped = errors.New("hub stopped")

type pendingNotice struct {
	timerID    int64
	generation uint64
}

// Hub is the single worker that owns every room. Read pumps, timers and RPC
// calls hand it closures; nothing else touches room state.
type Hub struct {
	dispatcher  *gateway.Dispatcher
	registry    *room.Registry
	broadcaster broadcast.Broadcaster
	sessions    *session.Manager
	timers      timer.Scheduler
	monitor     *monitor.Monitor
	notifyDelay time.Duration

	inbox   chan func()
	pending map[string]pendingNotice // room code -> scheduled turn notice
	done    chan struct{}
}

type HubConfig struct {
	Dispatcher  *gateway.Dispatcher
	Registry    *room.Registry
	Broadcaster broadcast.Broadcaster
	Sessions    *session.Manager
	Timers      timer.Scheduler
	Monitor     *monitor.Monitor
	NotifyDelay time.Duration
	InboxSize   int
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 1024
	}
	return &Hub{
		dispatcher:  cfg.Dispatcher,
		registry:    cfg.Registry,
		broadcaster: cfg.Broadcaster,
		sessions:    cfg.Sessions,
		timers:      cfg.Timers,
		monitor:     cfg.Monitor,
		notifyDelay: cfg.NotifyDelay,
		inbox:       make(chan func(), cfg.InboxSize),
		pending:     make(map[string]pendingNotice),
		done:        make(chan struct{}),
	}
}

// Run drains the inbox until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	logger.Log.Info("Hub started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Hub stopped")
			return nil
		case fn := <-h.inbox:
			h.safely(fn)
		}
	}
}

// Submit queues an inbound event. It blocks while the inbox is full.
func (h *Hub) Submit(in network.Inbound) error {
	return h.post(func() { h.handle(in) })
}

// AdvanceTurn ends the current turn of a room and returns its new state.
func (h *Hub) AdvanceTurn(ctx context.Context, code string) (models.RoomState, error) {
	var state models.RoomState
	var err error
	if callErr := h.call(ctx, func() {
		var res gateway.Result
		res, err = h.dispatcher.AdvanceTurn(code)
		if err != nil {
			return
		}
		h.apply(res)
		state, err = h.dispatcher.RoomState(code)
	}); callErr != nil {
		return models.RoomState{}, callErr
	}
	return state, err
}

func (h *Hub) RoomState(ctx context.Context, code string) (models.RoomState, error) {
	var state models.RoomState
	var err error
	if callErr := h.call(ctx, func() {
		state, err = h.dispatcher.RoomState(code)
	}); callErr != nil {
		return models.RoomState{}, callErr
	}
	return state, err
}

func (h *Hub) post(fn func()) error {
	select {
	case h.inbox <- fn:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// call runs fn on the worker and waits for it to finish.
func (h *Hub) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}
	select {
	case h.inbox <- job:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Recovered from panic in hub: %v", r)
		}
	}()
	fn()
}

func (h *Hub) handle(in network.Inbound) {
	start := time.Now()
	h.monitor.IncMessagesReceived(in.Event)
	defer func() {
		h.monitor.ObserveMessageLatency(time.Since(start))
		h.monitor.SetActiveRooms(h.registry.Count())
	}()

	if h.throttled(in) {
		h.broadcaster.SendTo(in.ConnID, network.EventError, gateway.ErrorMessage{
			Message: gateway.ClientMessage(gateway.ErrRateLimited),
		})
		return
	}
	h.apply(h.dispatcher.Handle(in))
}

func (h *Hub) throttled(in network.Inbound) bool {
	if in.Event != network.EventGuessWord && in.Event != network.EventSendMessage {
		return false
	}
	s, ok := h.sessions.Get(in.ConnID)
	return ok && !s.AllowChat()
}

func (h *Hub) apply(res gateway.Result) {
	h.broadcaster.Deliver(res.Messages)
	for _, code := range res.Settled {
		h.cancel(code)
	}
	for _, n := range res.Notices {
		h.schedule(n)
	}
}

// schedule replaces the room's pending turn notice.
func (h *Hub) schedule(n gateway.Notice) {
	h.cancel(n.RoomCode)
	id := h.timers.AddTimer(h.notifyDelay, func() {
		if err := h.post(func() { h.fire(n) }); err != nil {
			logger.Log.Debugf("Turn notice for room %s dropped: %v", n.RoomCode, err)
		}
	})
	h.pending[n.RoomCode] = pendingNotice{timerID: id, generation: n.Generation}
}

func (h *Hub) fire(n gateway.Notice) {
	if p, ok := h.pending[n.RoomCode]; ok && p.generation == n.Generation {
		delete(h.pending, n.RoomCode)
	}
	h.broadcaster.Deliver(h.dispatcher.Deliver(n))
}

func (h *Hub) cancel(code string) {
	p, ok := h.pending[code]
	if !ok {
		return
	}
	h.timers.RemoveTimer(p.timerID)
	delete(h.pending, code)
}
