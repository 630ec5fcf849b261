package filter

// MessageType classifies observer notifications.
type MessageType int

const (
	UpdateProgressMessage MessageType = iota
	StatusMessage
	WarningMessage
	ErrorMessage
	CancelMessage
)

func (t MessageType) String() string {
	switch t {
	case UpdateProgressMessage:
		return "progress"
	case StatusMessage:
		return "status"
	case WarningMessage:
		return "warning"
	case ErrorMessage:
		return "error"
	case CancelMessage:
		return "cancel"
	}
	return "unknown"
}

// Message is one notification from a running filter.
type Message struct {
	Filter   string
	Text     string
	Progress int
	Type     MessageType
}

// Observer receives filter notifications. Notify is called synchronously
// from the running filter.
type Observer interface {
	Notify(msg Message)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(msg Message)

func (f ObserverFunc) Notify(msg Message) { f(msg) }

func notifyAll(observers []Observer, msg Message) {
	for _, o := range observers {
		o.Notify(msg)
	}
}
