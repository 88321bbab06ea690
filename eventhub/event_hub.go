package eventhub

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"

	"github.com/AsynkronIT/protoactor-go/actor"
	"lukechampine.com/frand"

	"github.com/TopiaNetwork/flowlink/chain"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	"github.com/TopiaNetwork/flowlink/transport"
)

var ErrNotStarted = errors.New("event hub not started")

type EventHub interface {
	Start(sysActor *actor.ActorSystem) error
	Stop()
	Trig(ctx context.Context, name string, data interface{}) error
	Observe(ctx context.Context, evName string, evHandler EventHandler) (string, error) //return observation id
	UnObserve(ctx context.Context, obsID string, evName string) error
}

// NetworkChange is the payload of EventName_NetworkChanged.
type NetworkChange struct {
	Previous chain.ChainID
	Current  chain.ChainID
}

type eventHub struct {
	log       tplog.Logger
	name      string
	sysActor  *actor.ActorSystem
	evPID     *actor.PID
	evManager *eventManager
}

// NewEventHub creates a hub whose events are dispatched, in arrival order, by one actor named name.
func NewEventHub(level tplogcmm.LogLevel, log tplog.Logger, name string) EventHub {
	logEVActor := tplog.CreateModuleLogger(level, "EventHub", log)

	evManager := newEventManager()

	transportEvType := reflect.TypeOf(&transport.Event{}).String()
	evManager.registerEvent(EventName_SessionProposal, transportEvType)
	evManager.registerEvent(EventName_SessionSettled, transportEvType)
	evManager.registerEvent(EventName_SessionRequest, transportEvType)
	evManager.registerEvent(EventName_SessionResponse, transportEvType)
	evManager.registerEvent(EventName_SessionDeleted, transportEvType)
	evManager.registerEvent(EventName_SessionExtended, transportEvType)
	evManager.registerEvent(EventName_PairingDeleted, transportEvType)
	evManager.registerEvent(EventName_NetworkChanged, reflect.TypeOf(&NetworkChange{}).String())
	evManager.registerEvent(EventName_PendingRequested, reflect.TypeOf(&transport.Request{}).String())

	return &eventHub{
		log:       logEVActor,
		name:      name,
		evManager: evManager,
	}
}

func (hub *eventHub) Start(sysActor *actor.ActorSystem) error {
	evPID, err := createEventActor(hub.log, sysActor, hub.name, hub.evManager)
	if err != nil {
		hub.log.Errorf("create event actor error: %v", err)
		return err
	}

	hub.sysActor = sysActor
	hub.evPID = evPID
	return nil
}

func (hub *eventHub) Trig(ctx context.Context, name string, data interface{}) error {
	if hub.evPID == nil {
		return ErrNotStarted
	}
	if name == "" {
		return fmt.Errorf("blank event name")
	}

	hub.sysActor.Root.Send(hub.evPID, &EventMsg{name, data})

	return nil
}

func (hub *eventHub) generateObsID() string {
	return hex.EncodeToString(frand.Bytes(10))
}

func (hub *eventHub) Observe(ctx context.Context, evName string, evHandler EventHandler) (string, error) {
	obsID := hub.generateObsID()

	return obsID, hub.evManager.addEvObserver(obsID, evName, evHandler)
}

func (hub *eventHub) UnObserve(ctx context.Context, obsID string, evName string) error {
	return hub.evManager.removeEvObserver(obsID, evName)
}

func (hub *eventHub) Stop() {
	if hub.evPID == nil {
		return
	}
	hub.sysActor.Root.PoisonFuture(hub.evPID).Wait()
	hub.evPID = nil
}
