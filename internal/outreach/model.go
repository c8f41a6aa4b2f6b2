package outreach

import "time"

// State is a delivery lifecycle state. Replied and Failed are terminal;
// Sent, Delivered, and Opened are quiescent but may still advance.
type State string

const (
	StateDraft     State = "draft"
	StateSending   State = "sending"
	StateSent      State = "sent"
	StateDelivered State = "delivered"
	StateOpened    State = "opened"
	StateReplied   State = "replied"
	StateFailed    State = "failed"
)

// EventKind is an entry in a message's delivery history.
type EventKind string

const (
	EventCreated        EventKind = "created"
	EventDispatched     EventKind = "dispatched"
	EventSent           EventKind = "sent"
	EventDeliveryFailed EventKind = "delivery_failed"
	EventDelivered      EventKind = "delivered"
	EventOpened         EventKind = "opened"
	EventReplied        EventKind = "replied"
)

// AttachmentVariant selects which résumé rendition rides along with the email.
type AttachmentVariant string

const (
	AttachmentOriginal  AttachmentVariant = "original"
	AttachmentOptimized AttachmentVariant = "optimized"
)

// DeliveryEvent is one append-only history entry. Reason is set only for
// delivery failures.
type DeliveryEvent struct {
	Kind       EventKind `json:"kind"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Message is a single job-application email tracked through its delivery
// lifecycle. RecipientEmail, Subject, and AttachmentVariant are mutable only
// while the message is in Draft. History is the single source of truth for
// the current state.
type Message struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	JobID             string            `json:"jobId"`
	RecipientEmail    string            `json:"recipientEmail"`
	SenderEmail       string            `json:"senderEmail"`
	Subject           string            `json:"subject"`
	Body              string            `json:"body"`
	AttachmentVariant AttachmentVariant `json:"attachmentVariant"`
	History           []DeliveryEvent   `json:"history"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// State derives the current state from the last history entry.
func (m Message) State() State {
	if len(m.History) == 0 {
		return StateDraft
	}
	return stateOf(m.History[len(m.History)-1].Kind)
}

// LastEvent returns the newest history entry.
func (m Message) LastEvent() (DeliveryEvent, bool) {
	if len(m.History) == 0 {
		return DeliveryEvent{}, false
	}
	return m.History[len(m.History)-1], true
}

func stateOf(kind EventKind) State {
	switch kind {
	case EventCreated:
		return StateDraft
	case EventDispatched:
		return StateSending
	case EventSent:
		return StateSent
	case EventDeliveryFailed:
		return StateFailed
	case EventDelivered:
		return StateDelivered
	case EventOpened:
		return StateOpened
	case EventReplied:
		return StateReplied
	default:
		return StateDraft
	}
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateReplied || s == StateFailed
}

// InFlight reports whether the state blocks another dispatch for the same
// (user, job) pair. Drafts don't count; terminal states don't either.
func (s State) InFlight() bool {
	switch s {
	case StateSending, StateSent, StateDelivered, StateOpened:
		return true
	default:
		return false
	}
}

// allowedEvents maps each state to the event kinds it accepts. No skipping
// forward, no moving backward; Failed is reachable from Draft or Sending only.
var allowedEvents = map[State][]EventKind{
	StateDraft:     {EventDispatched, EventDeliveryFailed},
	StateSending:   {EventSent, EventDeliveryFailed},
	StateSent:      {EventDelivered},
	StateDelivered: {EventOpened},
	StateOpened:    {EventReplied},
	StateReplied:   {},
	StateFailed:    {},
}

// CanApply reports whether the event kind is a legal next step from the state.
func (s State) CanApply(kind EventKind) bool {
	for _, allowed := range allowedEvents[s] {
		if allowed == kind {
			return true
		}
	}
	return false
}

// ParseEventKind maps an external event name (provider webhook payload) to an
// EventKind.
func ParseEventKind(raw string) (EventKind, bool) {
	switch EventKind(raw) {
	case EventDelivered, EventOpened, EventReplied, EventDeliveryFailed, EventSent:
		return EventKind(raw), true
	default:
		return "", false
	}
}

// ParseAttachmentVariant maps a request value to an AttachmentVariant,
// defaulting to the original résumé.
func ParseAttachmentVariant(raw string) (AttachmentVariant, bool) {
	switch AttachmentVariant(raw) {
	case AttachmentOriginal, AttachmentOptimized:
		return AttachmentVariant(raw), true
	case "":
		return AttachmentOriginal, true
	default:
		return "", false
	}
}
