package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type ApproveCall struct {
	ProposalID uint64
	Namespaces Namespaces
}

type RejectCall struct {
	ProposalID uint64
	Reason     *RPCError
}

type SentRequest struct {
	ID      int64
	Topic   string
	ChainID string
	Method  string
	Params  json.RawMessage
}

// TransportMock is an in-memory Transport recording every outward call.
type TransportMock struct {
	sync sync.Mutex

	SessionList  []*Session
	PairingList  []*Pairing
	PendingList  []*Request
	ConnectURI   string
	ConnectTopic string

	ApproveErr error
	RejectErr  error
	RespondErr error
	PairErr    error
	PendingErr error

	Approved     []ApproveCall
	Rejected     []RejectCall
	Responses    []*Response
	Paired       []string
	Disconnected []string
	Connected    []Namespaces
	Sent         []SentRequest

	SessionsCalls int
	PendingCalls  int

	nextID int64
	events chan *Event
}

func NewTransportMock() *TransportMock {
	return &TransportMock{
		ConnectURI:   "wc:sync@2?relay-protocol=irn&symKey=00",
		ConnectTopic: "sync",
		nextID:       1000,
		events:       make(chan *Event, 64),
	}
}

func (tm *TransportMock) CreatePairing(ctx context.Context) (string, string, error) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.nextID++
	topic := fmt.Sprintf("pairing-%d", tm.nextID)
	tm.PairingList = append(tm.PairingList, &Pairing{Topic: topic, Active: false})

	return topic, fmt.Sprintf("wc:%s@2?relay-protocol=irn&symKey=00", topic), nil
}

func (tm *TransportMock) Pair(ctx context.Context, uri string) error {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	if tm.PairErr != nil {
		return tm.PairErr
	}
	tm.Paired = append(tm.Paired, uri)
	return nil
}

func (tm *TransportMock) Sessions(ctx context.Context) ([]*Session, error) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.SessionsCalls++
	return append([]*Session(nil), tm.SessionList...), nil
}

func (tm *TransportMock) Pairings(ctx context.Context) ([]*Pairing, error) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	return append([]*Pairing(nil), tm.PairingList...), nil
}

func (tm *TransportMock) Approve(ctx context.Context, proposalID uint64, namespaces Namespaces) error {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	if tm.ApproveErr != nil {
		return tm.ApproveErr
	}
	tm.Approved = append(tm.Approved, ApproveCall{proposalID, namespaces})
	return nil
}

func (tm *TransportMock) RejectSession(ctx context.Context, proposalID uint64, reason *RPCError) error {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	if tm.RejectErr != nil {
		return tm.RejectErr
	}
	tm.Rejected = append(tm.Rejected, RejectCall{proposalID, reason})
	return nil
}

func (tm *TransportMock) Respond(ctx context.Context, response *Response) error {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	if tm.RespondErr != nil {
		return tm.RespondErr
	}
	tm.Responses = append(tm.Responses, response)
	return nil
}

func (tm *TransportMock) PendingRequests(ctx context.Context) ([]*Request, error) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.PendingCalls++
	if tm.PendingErr != nil {
		return nil, tm.PendingErr
	}
	return append([]*Request(nil), tm.PendingList...), nil
}

func (tm *TransportMock) Disconnect(ctx context.Context, topic string) error {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.Disconnected = append(tm.Disconnected, topic)
	remaining := tm.SessionList[:0]
	for _, s := range tm.SessionList {
		if s.Topic != topic {
			remaining = append(remaining, s)
		}
	}
	tm.SessionList = remaining
	return nil
}

func (tm *TransportMock) Connect(ctx context.Context, required Namespaces) (string, string, error) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.Connected = append(tm.Connected, required)
	return tm.ConnectTopic, tm.ConnectURI, nil
}

func (tm *TransportMock) SendRequest(ctx context.Context, topic string, chainID string, method string, params interface{}) (int64, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return 0, err
	}

	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.nextID++
	tm.Sent = append(tm.Sent, SentRequest{tm.nextID, topic, chainID, method, data})
	return tm.nextID, nil
}

func (tm *TransportMock) Events() <-chan *Event {
	return tm.events
}

func (tm *TransportMock) Emit(ev *Event) {
	tm.events <- ev
}

func (tm *TransportMock) SetSessions(sessions ...*Session) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.SessionList = sessions
}

func (tm *TransportMock) SetPairings(pairings ...*Pairing) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.PairingList = pairings
}

func (tm *TransportMock) SetPending(requests ...*Request) {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	tm.PendingList = requests
}

func (tm *TransportMock) ApprovedCalls() []ApproveCall {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	return append([]ApproveCall(nil), tm.Approved...)
}

func (tm *TransportMock) RejectedCalls() []RejectCall {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	return append([]RejectCall(nil), tm.Rejected...)
}

func (tm *TransportMock) ResponseList() []*Response {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	return append([]*Response(nil), tm.Responses...)
}

func (tm *TransportMock) SentRequests() []SentRequest {
	tm.sync.Lock()
	defer tm.sync.Unlock()

	return append([]SentRequest(nil), tm.Sent...)
}
