package devicesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/transport"
)

var (
	ErrNotStarted  = errors.New("device sync not started")
	ErrNoSession   = errors.New("device sync session not settled")
	ErrOutstanding = errors.New("device sync request outstanding")
)

// Sink receives the outcome of a sync.
type Sink interface {
	ShowProfile(profile *account.Profile)
	DeviceAdded(device *account.DeviceRequest)
	SyncFailed(err error)
}

// Client is the part of the transport the requester drives.
type Client interface {
	Connect(ctx context.Context, required transport.Namespaces) (pairingTopic string, uri string, err error)
	SendRequest(ctx context.Context, topic string, chainID string, method string, params interface{}) (int64, error)
}

type outstanding struct {
	topic  string
	method string
	id     int64
	device *account.DeviceRequest
}

// Requester is the new device side of a sync: it opens a session to the device holding the
// account, asks for the account profile and pushes its own key for provisioning.
type Requester struct {
	log          tplog.Logger
	client       Client
	network      chain.NetworkProvider
	sink         Sink
	sync         sync.Mutex
	pairingTopic string
	sessionTopic string
	pending      *outstanding
}

func NewRequester(log tplog.Logger, client Client, network chain.NetworkProvider, sink Sink) *Requester {
	return &Requester{
		log:     log,
		client:  client,
		network: network,
		sink:    sink,
	}
}

func (r *Requester) chainID() string {
	return r.network.CurrentChainID().Native().CAIP2()
}

// Start proposes a sync session and returns the pairing uri to show the other device.
func (r *Requester) Start(ctx context.Context) (string, error) {
	required := transport.Namespaces{
		chain.FamilyNative: {
			Chains:  []string{r.chainID()},
			Methods: []string{handler.MethodAccountInfo, handler.MethodAddDeviceKey},
			Events:  []string{},
		},
	}

	topic, uri, err := r.client.Connect(ctx, required)
	if err != nil {
		r.log.Errorf("device sync connect err: %v", err)
		return "", err
	}

	r.sync.Lock()
	r.pairingTopic = topic
	r.sessionTopic = ""
	r.pending = nil
	r.sync.Unlock()

	r.log.Infof("device sync waiting on pairing %s", topic)
	return uri, nil
}

// SessionSettled requests the account profile once the sync session is up. It reports
// whether the session belongs to the sync.
func (r *Requester) SessionSettled(ctx context.Context, session *transport.Session) bool {
	r.sync.Lock()
	if r.pairingTopic == "" || session.PairingTopic != r.pairingTopic {
		r.sync.Unlock()
		return false
	}
	r.sessionTopic = session.Topic
	r.sync.Unlock()

	if err := r.send(ctx, handler.MethodAccountInfo, []interface{}{}, nil); err != nil {
		r.sink.SyncFailed(err)
	}
	return true
}

// SendDeviceInfo pushes the device descriptor to the account holder for confirmation.
func (r *Requester) SendDeviceInfo(ctx context.Context, device *account.DeviceRequest) error {
	if err := device.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(device)
	if err != nil {
		return err
	}
	return r.send(ctx, handler.MethodAddDeviceKey, []string{string(raw)}, device)
}

func (r *Requester) send(ctx context.Context, method string, params interface{}, device *account.DeviceRequest) error {
	r.sync.Lock()
	defer r.sync.Unlock()

	if r.pairingTopic == "" {
		return ErrNotStarted
	}
	if r.sessionTopic == "" {
		return ErrNoSession
	}
	if r.pending != nil {
		return fmt.Errorf("%w: %s", ErrOutstanding, r.pending.method)
	}

	id, err := r.client.SendRequest(ctx, r.sessionTopic, r.chainID(), method, params)
	if err != nil {
		r.log.Errorf("device sync %s err: %v", method, err)
		return err
	}
	r.pending = &outstanding{topic: r.sessionTopic, method: method, id: id, device: device}
	r.log.Debugf("device sync %s sent as %d", method, id)

	return nil
}

// answers reports whether resp answers p. Responses carry no method unless the daemon adds
// one, so the topic and request id decide.
func (p *outstanding) answers(resp *transport.Response) bool {
	if p == nil || p.topic != resp.Topic || p.id != resp.ID {
		return false
	}
	return resp.Method == "" || resp.Method == p.method
}

// Response routes a response answering the outstanding sync request. It reports whether the
// response was consumed.
func (r *Requester) Response(resp *transport.Response) bool {
	r.sync.Lock()
	p := r.pending
	if !p.answers(resp) {
		r.sync.Unlock()
		return false
	}
	r.pending = nil
	r.sync.Unlock()

	if resp.IsError() {
		r.log.Warnf("device sync %s declined: %v", p.method, resp.Error)
		r.sink.SyncFailed(resp.Error)
		return true
	}

	switch p.method {
	case handler.MethodAccountInfo:
		var envelope account.SyncResponse
		if err := json.Unmarshal(resp.Result, &envelope); err != nil {
			r.sink.SyncFailed(err)
			return true
		}
		profile, err := envelope.DecodeProfile()
		if err != nil {
			r.sink.SyncFailed(err)
			return true
		}
		r.sink.ShowProfile(profile)
	case handler.MethodAddDeviceKey:
		r.sink.DeviceAdded(p.device)
	}
	return true
}

// SessionDeleted abandons the sync when its session goes away.
func (r *Requester) SessionDeleted(topic string) {
	r.sync.Lock()
	defer r.sync.Unlock()

	if topic != "" && topic == r.sessionTopic {
		r.sessionTopic = ""
		r.pending = nil
	}
}

// NewDeviceRequest describes this device and its key for the account holder.
func NewDeviceRequest(key account.AccountKey, name string, deviceType string, userAgent string) *account.DeviceRequest {
	return &account.DeviceRequest{
		AccountKey: key,
		DeviceInfo: account.DeviceInfo{
			DeviceID:  uuid.NewString(),
			Name:      name,
			Type:      deviceType,
			UserAgent: userAgent,
		},
	}
}
