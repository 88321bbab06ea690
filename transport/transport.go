package transport

import "context"

// Transport is the pairing/session protocol client the orchestrator drives.
type Transport interface {
	// CreatePairing opens a new pairing and returns its topic and the invitation uri.
	CreatePairing(ctx context.Context) (topic string, uri string, err error)

	Pair(ctx context.Context, uri string) error

	Sessions(ctx context.Context) ([]*Session, error)

	Pairings(ctx context.Context) ([]*Pairing, error)

	Approve(ctx context.Context, proposalID uint64, namespaces Namespaces) error

	RejectSession(ctx context.Context, proposalID uint64, reason *RPCError) error

	Respond(ctx context.Context, response *Response) error

	PendingRequests(ctx context.Context) ([]*Request, error)

	Disconnect(ctx context.Context, topic string) error

	// Connect creates a pairing and proposes a session with required to whoever pairs with the returned uri.
	Connect(ctx context.Context, required Namespaces) (pairingTopic string, uri string, err error)

	// SendRequest issues method on the session at topic and returns the request id.
	SendRequest(ctx context.Context, topic string, chainID string, method string, params interface{}) (int64, error)

	Events() <-chan *Event
}
