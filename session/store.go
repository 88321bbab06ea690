package session

import (
	"context"
	"encoding/hex"
	"reflect"
	"sync"

	"go.uber.org/atomic"
	"lukechampine.com/frand"

	tplog "github.com/TopiaNetwork/flowlink/log"
	tptime "github.com/TopiaNetwork/flowlink/time"
	"github.com/TopiaNetwork/flowlink/transport"
)

// Source is the part of the transport the store refreshes from.
type Source interface {
	Sessions(ctx context.Context) ([]*transport.Session, error)
	Pairings(ctx context.Context) ([]*transport.Pairing, error)
}

type SessionsObserver func(sessions []*transport.Session)

// Store holds read-only snapshots of sessions and pairings. Every refresh replaces a snapshot wholesale.
type Store struct {
	log       tplog.Logger
	source    Source
	clock     tptime.Clock
	sessions  atomic.Value // []*transport.Session
	pairings  atomic.Value // []*transport.Pairing
	reload    sync.Mutex
	sync      sync.RWMutex
	observers map[string]SessionsObserver
}

func NewStore(log tplog.Logger, source Source) *Store {
	s := &Store{
		log:       log,
		source:    source,
		clock:     tptime.SystemClock,
		observers: make(map[string]SessionsObserver),
	}
	s.sessions.Store([]*transport.Session{})
	s.pairings.Store([]*transport.Pairing{})

	return s
}

// SetClock replaces the clock pairing expiries are checked against.
func (s *Store) SetClock(clock tptime.Clock) {
	s.clock = clock
}

func (s *Store) Reload(ctx context.Context) error {
	s.reload.Lock()
	defer s.reload.Unlock()

	sessions, err := s.source.Sessions(ctx)
	if err != nil {
		s.log.Errorf("reload sessions err: %v", err)
		return err
	}
	if sessions == nil {
		sessions = []*transport.Session{}
	}

	previous := s.Sessions()
	s.sessions.Store(sessions)
	s.log.Debugf("sessions reloaded: %d", len(sessions))

	if !reflect.DeepEqual(previous, sessions) {
		s.notify(s.Sessions())
	}

	return nil
}

func (s *Store) ReloadPairings(ctx context.Context) error {
	s.reload.Lock()
	defer s.reload.Unlock()

	pairings, err := s.source.Pairings(ctx)
	if err != nil {
		s.log.Errorf("reload pairings err: %v", err)
		return err
	}
	if pairings == nil {
		pairings = []*transport.Pairing{}
	}
	s.pairings.Store(pairings)

	return nil
}

// Sessions returns a copy of the current snapshot.
func (s *Store) Sessions() []*transport.Session {
	snapshot := s.sessions.Load().([]*transport.Session)
	return append([]*transport.Session{}, snapshot...)
}

func (s *Store) Pairings() []*transport.Pairing {
	snapshot := s.pairings.Load().([]*transport.Pairing)
	return append([]*transport.Pairing{}, snapshot...)
}

func (s *Store) Session(topic string) (*transport.Session, bool) {
	for _, ss := range s.sessions.Load().([]*transport.Session) {
		if ss.Topic == topic {
			return ss, true
		}
	}
	return nil, false
}

// HasActivePairing reports whether topic names an unexpired pairing a session was already settled over.
func (s *Store) HasActivePairing(topic string) bool {
	if topic == "" {
		return false
	}
	for _, p := range s.pairings.Load().([]*transport.Pairing) {
		if p.Topic != topic || !p.Active {
			continue
		}
		return p.Expiry == 0 || !s.clock.NowAfter(tptime.UnixSecondsToTimeStamp(p.Expiry))
	}
	return false
}

// Observe calls observer with the current sessions now and after every change. The returned
// function removes it.
func (s *Store) Observe(observer SessionsObserver) (cancel func()) {
	obsID := hex.EncodeToString(frand.Bytes(8))

	s.sync.Lock()
	s.observers[obsID] = observer
	s.sync.Unlock()

	observer(s.Sessions())

	return func() {
		s.sync.Lock()
		defer s.sync.Unlock()
		delete(s.observers, obsID)
	}
}

func (s *Store) notify(sessions []*transport.Session) {
	s.sync.RLock()
	observers := make([]SessionsObserver, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.sync.RUnlock()

	for _, o := range observers {
		o(sessions)
	}
}
