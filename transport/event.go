package transport

type EventKind byte

const (
	EventKind_Unknown EventKind = iota
	EventKind_Proposal
	EventKind_SessionSettled
	EventKind_Request
	EventKind_Response
	EventKind_SessionDeleted
	EventKind_SessionExtended
	EventKind_PairingDeleted
)

func (k EventKind) String() string {
	switch k {
	case EventKind_Proposal:
		return "session_proposal"
	case EventKind_SessionSettled:
		return "session_settle"
	case EventKind_Request:
		return "session_request"
	case EventKind_Response:
		return "session_response"
	case EventKind_SessionDeleted:
		return "session_delete"
	case EventKind_SessionExtended:
		return "session_extend"
	case EventKind_PairingDeleted:
		return "pairing_delete"
	}
	return "unknown"
}

func ParseEventKind(name string) EventKind {
	for k := EventKind_Proposal; k <= EventKind_PairingDeleted; k++ {
		if k.String() == name {
			return k
		}
	}
	return EventKind_Unknown
}

// Event is one item of the transport's event stream. Exactly one payload field is set
// according to Kind; Topic is set for deletions and extensions.
type Event struct {
	Kind     EventKind
	Topic    string
	Proposal *Proposal
	Session  *Session
	Request  *Request
	Response *Response
}
