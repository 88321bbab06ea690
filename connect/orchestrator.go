package connect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AsynkronIT/protoactor-go/actor"
	"github.com/hashicorp/go-multierror"
	uatomic "go.uber.org/atomic"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	"github.com/TopiaNetwork/flowlink/crypt"
	"github.com/TopiaNetwork/flowlink/devicesync"
	"github.com/TopiaNetwork/flowlink/eventhub"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	"github.com/TopiaNetwork/flowlink/proposal"
	"github.com/TopiaNetwork/flowlink/reconciler"
	"github.com/TopiaNetwork/flowlink/request"
	"github.com/TopiaNetwork/flowlink/session"
	tptime "github.com/TopiaNetwork/flowlink/time"
	"github.com/TopiaNetwork/flowlink/transport"
)

var (
	ErrStarted      = errors.New("orchestrator already started")
	ErrNoPending    = errors.New("no such pending request")
	ErrNoDeviceSync = errors.New("device sync not configured")
)

// Collaborators are the wallet services the orchestrator drives.
type Collaborators struct {
	Transport transport.Transport
	Signer    crypt.Signer
	Accounts  account.Provider
	Devices   account.DeviceKeys
	EVM       handler.EVMProvider
	Network   chain.NetworkProvider
	Surface   approval.Surface
	Notifier  approval.Notifier
	TimerMng  tptime.TimerManager
	// SyncSink receives device sync outcomes; device sync is off without it.
	SyncSink devicesync.Sink
	// Clock judges pairing expiry, the system clock when nil.
	Clock tptime.Clock
}

type observation struct {
	evName string
	obsID  string
}

// Orchestrator owns the event subscriptions, pipelines and reconciler of one wallet.
type Orchestrator struct {
	log           tplog.Logger
	name          string
	config        *tpconfig.Configuration
	sysActor      *actor.ActorSystem
	transport     transport.Transport
	network       chain.NetworkProvider
	hub           eventhub.EventHub
	store         *session.Store
	proposals     *proposal.Pipeline
	requests      *request.Pipeline
	reconciler    *reconciler.Reconciler
	syncer        *devicesync.Requester
	started       *uatomic.Bool
	observations  []observation
	cancelNetwork func()
	quit          chan struct{}
	wg            sync.WaitGroup
}

// NewOrchestrator wires the pipelines. name must be unique within sysActor.
func NewOrchestrator(level tplogcmm.LogLevel, log tplog.Logger, name string, sysActor *actor.ActorSystem, config *tpconfig.Configuration, c *Collaborators) (*Orchestrator, error) {
	store := session.NewStore(tplog.CreateModuleLogger(level, "SessionStore", log), c.Transport)
	if c.Clock != nil {
		store.SetClock(c.Clock)
	}

	registry := handler.NewRegistry(
		handler.NewNativeHandler(),
		handler.NewEVMHandler(tplog.CreateModuleLogger(level, "EVMHandler", log), c.EVM, c.Surface),
	)

	proposals := proposal.NewPipeline(tplog.CreateModuleLogger(level, "ProposalPipeline", log),
		registry, c.Transport, store, c.Network, c.Accounts, c.Surface, c.Notifier)

	requests, err := request.NewPipeline(tplog.CreateModuleLogger(level, "RequestPipeline", log),
		config.RequestConfig, registry, c.Transport, store, c.Signer, c.Accounts, c.Devices, c.Surface, c.Notifier)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		log:        tplog.CreateModuleLogger(level, "Orchestrator", log),
		name:       name,
		config:     config,
		sysActor:   sysActor,
		transport:  c.Transport,
		network:    c.Network,
		hub:        eventhub.NewEventHub(level, log, name+"_events"),
		store:      store,
		proposals:  proposals,
		requests:   requests,
		reconciler: reconciler.NewReconciler(tplog.CreateModuleLogger(level, "Reconciler", log), config.ReconcilerConfig, c.Transport, c.Notifier, c.TimerMng),
		started:    uatomic.NewBool(false),
	}
	if c.SyncSink != nil {
		o.syncer = devicesync.NewRequester(tplog.CreateModuleLogger(level, "DeviceSync", log), c.Transport, c.Network, c.SyncSink)
	}

	return o, nil
}

// Start subscribes to the transport and loads the current sessions and pairings.
func (o *Orchestrator) Start(ctx context.Context) error {
	if !o.started.CAS(false, true) {
		return ErrStarted
	}
	o.quit = make(chan struct{})

	if err := o.hub.Start(o.sysActor); err != nil {
		return err
	}
	if err := o.observe(ctx); err != nil {
		return err
	}

	o.cancelNetwork = o.network.OnNetworkChanged(func(previous chain.ChainID, current chain.ChainID) {
		o.hub.Trig(ctx, eventhub.EventName_NetworkChanged, &eventhub.NetworkChange{Previous: previous, Current: current})
	})

	o.wg.Add(1)
	go o.pump(ctx)

	if err := o.store.Reload(ctx); err != nil {
		o.log.Warnf("initial session load: %v", err)
	}
	if err := o.store.ReloadPairings(ctx); err != nil {
		o.log.Warnf("initial pairing load: %v", err)
	}

	o.log.Infof("orchestrator %s started", o.name)
	return nil
}

func (o *Orchestrator) pump(ctx context.Context) {
	defer o.wg.Done()

	events := o.transport.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				o.log.Warn("transport event stream closed")
				return
			}
			name := eventhub.EventNameOf(ev.Kind)
			if name == "" {
				o.log.Warnf("drop unknown event %v", ev.Kind)
				continue
			}
			if err := o.hub.Trig(ctx, name, ev); err != nil {
				o.log.Errorf("trig %s err: %v", name, err)
			}
		case <-o.quit:
			return
		}
	}
}

func (o *Orchestrator) observe(ctx context.Context) error {
	handlers := map[string]eventhub.EventHandler{
		eventhub.EventName_SessionProposal:  o.onProposal,
		eventhub.EventName_SessionSettled:   o.onSessionSettled,
		eventhub.EventName_SessionRequest:   o.onRequest,
		eventhub.EventName_SessionResponse:  o.onResponse,
		eventhub.EventName_SessionDeleted:   o.onSessionDeleted,
		eventhub.EventName_SessionExtended:  o.onSessionExtended,
		eventhub.EventName_PairingDeleted:   o.onPairingDeleted,
		eventhub.EventName_NetworkChanged:   o.onNetworkChanged,
		eventhub.EventName_PendingRequested: o.onPendingRequested,
	}

	for evName, h := range handlers {
		obsID, err := o.hub.Observe(ctx, evName, h)
		if err != nil {
			return fmt.Errorf("observe %s: %w", evName, err)
		}
		o.observations = append(o.observations, observation{evName: evName, obsID: obsID})
	}
	return nil
}

func (o *Orchestrator) onProposal(ctx context.Context, data interface{}) error {
	ev := data.(*transport.Event)
	if ev.Proposal == nil {
		return fmt.Errorf("proposal event without proposal")
	}

	outcome := o.proposals.Process(ctx, ev.Proposal)
	o.log.Infof("proposal %d from %s: %s", ev.Proposal.ID, ev.Proposal.Proposer.Name, outcome)
	return nil
}

func (o *Orchestrator) onSessionSettled(ctx context.Context, data interface{}) error {
	ev := data.(*transport.Event)

	var errs error
	if err := o.store.Reload(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := o.store.ReloadPairings(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	if o.syncer != nil && ev.Session != nil {
		o.syncer.SessionSettled(ctx, ev.Session)
	}
	return errs
}

func (o *Orchestrator) onRequest(ctx context.Context, data interface{}) error {
	ev := data.(*transport.Event)
	if ev.Request == nil {
		return fmt.Errorf("request event without request")
	}

	state := o.requests.Handle(ctx, ev.Request)
	o.log.Debugf("request %s/%d %s: %s", ev.Request.Topic, ev.Request.ID, ev.Request.Method, state)
	return nil
}

func (o *Orchestrator) onResponse(ctx context.Context, data interface{}) error {
	ev := data.(*transport.Event)
	if ev.Response == nil || o.syncer == nil {
		return nil
	}
	if !o.syncer.Response(ev.Response) {
		o.log.Debugf("unmatched response %s/%d", ev.Response.Topic, ev.Response.ID)
	}
	return nil
}

func (o *Orchestrator) onSessionDeleted(ctx context.Context, data interface{}) error {
	ev := data.(*transport.Event)

	o.requests.SessionDeleted(ev.Topic)
	if o.syncer != nil {
		o.syncer.SessionDeleted(ev.Topic)
	}
	return o.store.Reload(ctx)
}

func (o *Orchestrator) onSessionExtended(ctx context.Context, data interface{}) error {
	return o.store.Reload(ctx)
}

func (o *Orchestrator) onPairingDeleted(ctx context.Context, data interface{}) error {
	return o.store.ReloadPairings(ctx)
}

func (o *Orchestrator) onNetworkChanged(ctx context.Context, data interface{}) error {
	change := data.(*eventhub.NetworkChange)
	o.log.Infof("network changed from %s to %s", change.Previous, change.Current)
	return nil
}

func (o *Orchestrator) onPendingRequested(ctx context.Context, data interface{}) error {
	req := data.(*transport.Request)

	state := o.requests.Handle(ctx, req)
	o.log.Debugf("pending request %s/%d opened: %s", req.Topic, req.ID, state)
	return nil
}

// Connect pairs with the dApp advertising uri.
func (o *Orchestrator) Connect(ctx context.Context, uri string) error {
	if err := o.transport.Pair(ctx, uri); err != nil {
		o.log.Errorf("pair err: %v", err)
		return err
	}
	return nil
}

// CreatePairing returns a pairing uri for a dApp to scan.
func (o *Orchestrator) CreatePairing(ctx context.Context) (string, error) {
	topic, uri, err := o.transport.CreatePairing(ctx)
	if err != nil {
		return "", err
	}
	o.log.Infof("pairing %s created", topic)
	return uri, nil
}

func (o *Orchestrator) Disconnect(ctx context.Context, topic string) error {
	if err := o.transport.Disconnect(ctx, topic); err != nil {
		o.log.Errorf("disconnect %s err: %v", topic, err)
		return err
	}
	o.requests.SessionDeleted(topic)
	return o.store.Reload(ctx)
}

func (o *Orchestrator) ReloadSessions(ctx context.Context) error {
	return o.store.Reload(ctx)
}

func (o *Orchestrator) ReloadPairings(ctx context.Context) error {
	return o.store.ReloadPairings(ctx)
}

func (o *Orchestrator) Sessions() []*transport.Session {
	return o.store.Sessions()
}

func (o *Orchestrator) Pairings() []*transport.Pairing {
	return o.store.Pairings()
}

func (o *Orchestrator) PendingRequests() []*transport.Request {
	return o.reconciler.Pending()
}

func (o *Orchestrator) ObserveSessions(observer session.SessionsObserver) (cancel func()) {
	return o.store.Observe(observer)
}

func (o *Orchestrator) ObservePending(observer reconciler.PendingObserver) (cancel func()) {
	return o.reconciler.Observe(observer)
}

func (o *Orchestrator) SetAuthenticated(authenticated bool) {
	o.reconciler.SetAuthenticated(authenticated)
}

// Foreground pulls the pending requests once, outside the regular cadence.
func (o *Orchestrator) Foreground(ctx context.Context) {
	o.reconciler.ForceTick(ctx)
}

// OpenPending routes the pending request id to the request pipeline, as when the user taps its notification.
func (o *Orchestrator) OpenPending(ctx context.Context, id int64) error {
	req, ok := o.reconciler.Find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoPending, id)
	}
	return o.hub.Trig(ctx, eventhub.EventName_PendingRequested, req)
}

// StartDeviceSync proposes a sync session and returns its pairing uri.
func (o *Orchestrator) StartDeviceSync(ctx context.Context) (string, error) {
	if o.syncer == nil {
		return "", ErrNoDeviceSync
	}
	return o.syncer.Start(ctx)
}

func (o *Orchestrator) SendDeviceInfo(ctx context.Context, device *account.DeviceRequest) error {
	if o.syncer == nil {
		return ErrNoDeviceSync
	}
	return o.syncer.SendDeviceInfo(ctx, device)
}

func (o *Orchestrator) Stop() error {
	if !o.started.CAS(true, false) {
		return nil
	}

	close(o.quit)
	o.wg.Wait()

	o.reconciler.Stop()
	if o.cancelNetwork != nil {
		o.cancelNetwork()
	}

	var errs error
	for _, obs := range o.observations {
		if err := o.hub.UnObserve(context.Background(), obs.obsID, obs.evName); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	o.observations = nil
	o.hub.Stop()

	o.log.Infof("orchestrator %s stopped", o.name)
	return errs
}
