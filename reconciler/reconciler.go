package reconciler

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/subchen/go-trylock/v2"
	uatomic "go.uber.org/atomic"
	"lukechampine.com/frand"

	"github.com/TopiaNetwork/flowlink/approval"
	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tptime "github.com/TopiaNetwork/flowlink/time"
	"github.com/TopiaNetwork/flowlink/transport"
)

const (
	timerName   = "pending_reconcile"
	tickLockTTL = 10 * time.Millisecond
)

// Source is the part of the transport outstanding requests are pulled from.
type Source interface {
	PendingRequests(ctx context.Context) ([]*transport.Request, error)
}

type PendingObserver func(requests []*transport.Request)

// Reconciler mirrors the transport's outstanding requests while the wallet is authenticated.
type Reconciler struct {
	log           tplog.Logger
	config        *tpconfig.ReconcilerConfiguration
	source        Source
	notifier      approval.Notifier
	timerMng      tptime.TimerManager
	tickLock      trylock.TryLocker
	authenticated *uatomic.Bool
	authSync      sync.Mutex    // orders logout against a pull landing
	pending       uatomic.Value // []*transport.Request
	sync          sync.RWMutex
	observers     map[string]PendingObserver
}

func NewReconciler(log tplog.Logger, config *tpconfig.ReconcilerConfiguration, source Source, notifier approval.Notifier, timerMng tptime.TimerManager) *Reconciler {
	r := &Reconciler{
		log:           log,
		config:        config,
		source:        source,
		notifier:      notifier,
		timerMng:      timerMng,
		tickLock:      trylock.New(),
		authenticated: uatomic.NewBool(false),
		observers:     make(map[string]PendingObserver),
	}
	r.pending.Store([]*transport.Request{})

	timerMng.RegisterPeriodicTimer(timerName, r.timerTick, config.Interval)

	return r
}

// SetAuthenticated starts the periodic pull on login and stops it, clearing the list, on logout.
func (r *Reconciler) SetAuthenticated(authenticated bool) {
	if authenticated {
		if r.authenticated.CAS(false, true) {
			r.log.Info("pending reconcile started")
			r.timerMng.StartTimer(timerName, true)
		}
		return
	}

	r.authSync.Lock()
	loggedOut := r.authenticated.CAS(true, false)
	if loggedOut {
		r.pending.Store([]*transport.Request{})
	}
	r.authSync.Unlock()

	if loggedOut {
		r.timerMng.StopTimer(timerName)
		r.publish()
		r.log.Info("pending reconcile stopped")
	}
}

func (r *Reconciler) Authenticated() bool {
	return r.authenticated.Load()
}

// ForceTick pulls once outside the regular cadence. It reports whether a pull happened.
func (r *Reconciler) ForceTick(ctx context.Context) bool {
	if !r.authenticated.Load() {
		return false
	}
	return r.tick(ctx)
}

func (r *Reconciler) timerTick() bool {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Interval)
	defer cancel()

	return r.tick(ctx)
}

func (r *Reconciler) tick(ctx context.Context) bool {
	if !r.tickLock.TryLockTimeout(tickLockTTL) {
		r.log.Debug("pending reconcile already running")
		return false
	}
	defer r.tickLock.Unlock()

	requests, err := r.source.PendingRequests(ctx)
	if err != nil {
		r.log.Errorf("pull pending requests err: %v", err)
		return false
	}
	if requests == nil {
		requests = []*transport.Request{}
	}

	r.authSync.Lock()
	if !r.authenticated.Load() {
		r.authSync.Unlock()
		return false
	}
	r.pending.Store(requests)
	r.authSync.Unlock()

	r.log.Debugf("pending requests: %d", len(requests))
	r.publish()
	return true
}

// publish hands the current list to the notifier and the observers.
func (r *Reconciler) publish() {
	r.notifier.PendingChanged(r.Pending())

	r.sync.RLock()
	observers := make([]PendingObserver, 0, len(r.observers))
	for _, o := range r.observers {
		observers = append(observers, o)
	}
	r.sync.RUnlock()

	for _, o := range observers {
		o(r.Pending())
	}
}

// Pending returns a copy of the current list.
func (r *Reconciler) Pending() []*transport.Request {
	snapshot := r.pending.Load().([]*transport.Request)
	return append([]*transport.Request{}, snapshot...)
}

// Find looks a pending request up by id, as when the user opens its notification.
func (r *Reconciler) Find(id int64) (*transport.Request, bool) {
	for _, req := range r.pending.Load().([]*transport.Request) {
		if req.ID == id {
			return req, true
		}
	}
	return nil, false
}

// Observe calls observer with the current list now and after every replacement.
func (r *Reconciler) Observe(observer PendingObserver) (cancel func()) {
	obsID := hex.EncodeToString(frand.Bytes(8))

	r.sync.Lock()
	r.observers[obsID] = observer
	r.sync.Unlock()

	observer(r.Pending())

	return func() {
		r.sync.Lock()
		defer r.sync.Unlock()
		delete(r.observers, obsID)
	}
}

// Stop logs out. The timer stays registered, a later SetAuthenticated(true) resumes it.
func (r *Reconciler) Stop() {
	r.SetAuthenticated(false)
}
