package outreach

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"outreach-backend/internal/mail"
	"outreach-backend/internal/shared/telemetry"
)

// Listener observes applied delivery events. Listeners run outside the
// manager's lock and must not block for long.
type Listener func(msg Message, ev DeliveryEvent)

// ManagerConfig carries the timing knobs for the delivery lifecycle.
type ManagerConfig struct {
	// SendTimeout fails a message that sits in Sending past this duration.
	SendTimeout time.Duration
	// SimulateProvider, when set, makes the manager play the provider's part
	// and walk sent messages through Delivered, Opened, and Replied.
	SimulateProvider bool
	DeliveredDelay   time.Duration
	OpenedDelay      time.Duration
	RepliedDelay     time.Duration
}

// Manager owns the delivery lifecycle of outreach messages. Every state
// change goes through Apply, which validates the transition against the
// current state, stamps the event, persists it, and fans it out to listeners.
// The manager also holds the per-message timers (send timeout, simulated
// provider progress) and the in-flight slots that serialize dispatch per
// (user, job) pair.
type Manager struct {
	repo      Repo
	transport mail.Transport
	scheduler Scheduler
	cfg       ManagerConfig

	mu        sync.Mutex
	timers    map[string][]CancelFunc
	inFlight  map[string]string
	listeners map[int]Listener
	msgLocks  map[string]*msgLock
	nextSub   int
	lastStamp time.Time
}

// msgLock serializes Apply per message id. The refcount lets the entry be
// dropped once no goroutine is waiting on it.
type msgLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager constructs a Manager.
func NewManager(repo Repo, transport mail.Transport, scheduler Scheduler, cfg ManagerConfig) *Manager {
	return &Manager{
		repo:      repo,
		transport: transport,
		scheduler: scheduler,
		cfg:       cfg,
		timers:    make(map[string][]CancelFunc),
		inFlight:  make(map[string]string),
		listeners: make(map[int]Listener),
		msgLocks:  make(map[string]*msgLock),
	}
}

// Subscribe registers a listener for applied events and returns an
// unsubscribe func.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Apply records an event on a message. It returns ErrInvalidTransition when
// the event is not a legal next step; in that case neither the history nor
// the state changes. Calls for the same message are serialized, so of two
// competing events that are each valid from the current state exactly one
// lands and the other is rejected against the new state.
func (m *Manager) Apply(ctx context.Context, messageID string, kind EventKind, reason string) (Message, error) {
	msg, from, ev, err := m.record(ctx, messageID, kind, reason)
	if err != nil {
		return Message{}, err
	}

	telemetry.Info("outreach.status", map[string]any{
		"messageId": msg.ID,
		"jobId":     msg.JobID,
		"from":      string(from),
		"to":        string(msg.State()),
		"event":     string(kind),
		"reason":    reason,
	})

	m.afterApply(msg, ev)
	return msg, nil
}

// record runs the read-validate-append-persist critical section under the
// message's lock. Listener fan-out and timer bookkeeping stay outside so a
// listener may call back into the manager.
func (m *Manager) record(ctx context.Context, messageID string, kind EventKind, reason string) (Message, State, DeliveryEvent, error) {
	unlock := m.lockMessage(messageID)
	defer unlock()

	msg, err := m.repo.Get(ctx, messageID)
	if err != nil {
		return Message{}, "", DeliveryEvent{}, err
	}
	from := msg.State()
	if !from.CanApply(kind) {
		return Message{}, "", DeliveryEvent{}, fmt.Errorf("%w: %s does not accept %s", ErrInvalidTransition, from, kind)
	}

	ev := DeliveryEvent{Kind: kind, Reason: reason, OccurredAt: m.stamp()}
	msg.History = append(msg.History, ev)
	msg.UpdatedAt = ev.OccurredAt
	if err := m.repo.Update(ctx, msg); err != nil {
		return Message{}, "", DeliveryEvent{}, err
	}
	return msg, from, ev, nil
}

// lockMessage acquires the per-message lock, creating it on first use and
// dropping it once the last holder releases.
func (m *Manager) lockMessage(messageID string) func() {
	m.mu.Lock()
	l, ok := m.msgLocks[messageID]
	if !ok {
		l = &msgLock{}
		m.msgLocks[messageID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.msgLocks, messageID)
		}
		m.mu.Unlock()
	}
}

// AcquireInFlight reserves the dispatch slot for the (user, job) pair. It
// returns ErrDuplicateInFlight when another message for the pair is between
// Sending and Opened.
func (m *Manager) AcquireInFlight(ctx context.Context, userID, jobID, messageID string) error {
	key := inFlightKey(userID, jobID)

	m.mu.Lock()
	if holder, ok := m.inFlight[key]; ok && holder != messageID {
		m.mu.Unlock()
		return ErrDuplicateInFlight
	}
	m.inFlight[key] = messageID
	m.mu.Unlock()

	// The map only knows about this process; the repo check covers messages
	// dispatched before a restart.
	existing, err := m.repo.FindInFlight(ctx, userID, jobID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		m.releaseInFlight(key, messageID)
		return err
	}
	if err == nil && existing.ID != messageID {
		m.releaseInFlight(key, messageID)
		return ErrDuplicateInFlight
	}
	return nil
}

// ProcessSend performs the transport send for a message in Sending. The send
// worker calls it once per queue message; anything not in Sending (already
// timed out, discarded) is skipped.
func (m *Manager) ProcessSend(ctx context.Context, messageID string) error {
	msg, err := m.repo.Get(ctx, messageID)
	if errors.Is(err, ErrNotFound) {
		telemetry.Warn("outreach.send.skipped", map[string]any{"messageId": messageID, "reason": "not found"})
		return nil
	}
	if err != nil {
		return err
	}
	if msg.State() != StateSending {
		telemetry.Warn("outreach.send.skipped", map[string]any{
			"messageId": messageID,
			"state":     string(msg.State()),
		})
		return nil
	}

	email := mail.Email{
		MessageID: msg.ID,
		From:      msg.SenderEmail,
		To:        msg.RecipientEmail,
		Subject:   msg.Subject,
		Body:      msg.Body,
	}
	if sendErr := m.transport.Send(ctx, email); sendErr != nil {
		reason := sendErr.Error()
		var terr *mail.TransportError
		if errors.As(sendErr, &terr) {
			reason = terr.Code
		}
		_, err := m.Apply(ctx, messageID, EventDeliveryFailed, reason)
		if errors.Is(err, ErrInvalidTransition) {
			return nil
		}
		return err
	}

	_, err = m.Apply(ctx, messageID, EventSent, "")
	if errors.Is(err, ErrInvalidTransition) {
		return nil
	}
	return err
}

// Discard cancels the message's timers and frees its in-flight slot. The
// caller deletes the record.
func (m *Manager) Discard(msg Message) {
	m.mu.Lock()
	cancels := m.timers[msg.ID]
	delete(m.timers, msg.ID)
	key := inFlightKey(msg.UserID, msg.JobID)
	if m.inFlight[key] == msg.ID {
		delete(m.inFlight, key)
	}
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// afterApply runs the side effects of a recorded event: timer bookkeeping,
// follow-up scheduling, in-flight release, and listener fan-out.
func (m *Manager) afterApply(msg Message, ev DeliveryEvent) {
	m.mu.Lock()
	cancels := m.timers[msg.ID]
	delete(m.timers, msg.ID)
	state := msg.State()
	if state.IsTerminal() {
		key := inFlightKey(msg.UserID, msg.JobID)
		if m.inFlight[key] == msg.ID {
			delete(m.inFlight, key)
		}
	}
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	m.scheduleNext(msg.ID, ev.Kind)
	for _, fn := range listeners {
		fn(msg, ev)
	}
}

// scheduleNext arms the timer that follows an event: the send timeout after
// dispatch, and the simulated provider steps after sent/delivered/opened.
func (m *Manager) scheduleNext(messageID string, kind EventKind) {
	var d time.Duration
	var next EventKind
	var reason string

	switch kind {
	case EventDispatched:
		if m.cfg.SendTimeout <= 0 {
			return
		}
		d, next, reason = m.cfg.SendTimeout, EventDeliveryFailed, FailureReasonTimeout
	case EventSent:
		if !m.cfg.SimulateProvider {
			return
		}
		d, next = m.cfg.DeliveredDelay, EventDelivered
	case EventDelivered:
		if !m.cfg.SimulateProvider {
			return
		}
		d, next = m.cfg.OpenedDelay, EventOpened
	case EventOpened:
		if !m.cfg.SimulateProvider {
			return
		}
		d, next = m.cfg.RepliedDelay, EventReplied
	default:
		return
	}

	cancel := m.scheduler.After(d, func() {
		_, err := m.Apply(context.Background(), messageID, next, reason)
		if err != nil && !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrNotFound) {
			telemetry.Error("outreach.timer.apply", map[string]any{
				"messageId": messageID,
				"event":     string(next),
				"error":     err.Error(),
			})
		}
	})

	m.mu.Lock()
	m.timers[messageID] = append(m.timers[messageID], cancel)
	m.mu.Unlock()
}

func (m *Manager) releaseInFlight(key, messageID string) {
	m.mu.Lock()
	if m.inFlight[key] == messageID {
		delete(m.inFlight, key)
	}
	m.mu.Unlock()
}

// stamp returns a strictly increasing timestamp so history order is never
// ambiguous even when events land within the clock's resolution.
func (m *Manager) stamp() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if !now.After(m.lastStamp) {
		now = m.lastStamp.Add(time.Microsecond)
	}
	m.lastStamp = now
	return now
}

func inFlightKey(userID, jobID string) string {
	return userID + "|" + jobID
}
