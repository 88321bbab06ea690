package eventhub

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/transport"
)

const (
	EventName_SessionProposal  = "SessionProposal"
	EventName_SessionSettled   = "SessionSettled"
	EventName_SessionRequest   = "SessionRequest"
	EventName_SessionResponse  = "SessionResponse"
	EventName_SessionDeleted   = "SessionDeleted"
	EventName_SessionExtended  = "SessionExtended"
	EventName_PairingDeleted   = "PairingDeleted"
	EventName_NetworkChanged   = "NetworkChanged"
	EventName_PendingRequested = "PendingRequested"
)

// EventNameOf maps a transport event kind to the hub event it is published under.
func EventNameOf(kind transport.EventKind) string {
	switch kind {
	case transport.EventKind_Proposal:
		return EventName_SessionProposal
	case transport.EventKind_SessionSettled:
		return EventName_SessionSettled
	case transport.EventKind_Request:
		return EventName_SessionRequest
	case transport.EventKind_Response:
		return EventName_SessionResponse
	case transport.EventKind_SessionDeleted:
		return EventName_SessionDeleted
	case transport.EventKind_SessionExtended:
		return EventName_SessionExtended
	case transport.EventKind_PairingDeleted:
		return EventName_PairingDeleted
	}
	return ""
}

type EventTrigger interface {
	Trig(ctx context.Context, name string, data interface{}) error
}

type EventHandler func(ctx context.Context, data interface{}) error

type EventObserver interface {
	Observe(ctx context.Context, evName string, evHandler EventHandler) (string, error) //return observation id
	UnObserve(ctx context.Context, obsID string, evName string) error
}

type EventMsg struct {
	Name string
	Data interface{}
}

type observer struct {
	seq     uint64
	handler EventHandler
}

type Event struct {
	Name        string
	DataType    string
	sync        sync.RWMutex
	nextSeq     uint64
	handlerList map[string]*observer //observation id -> observer
}

func (ev *Event) addObserver(obsID string, evHandler EventHandler) error {
	ev.sync.Lock()
	defer ev.sync.Unlock()

	if _, ok := ev.handlerList[obsID]; ok {
		return fmt.Errorf("Duplicated observation id: %s", obsID)
	}

	ev.nextSeq++
	ev.handlerList[obsID] = &observer{seq: ev.nextSeq, handler: evHandler}

	return nil
}

func (ev *Event) removeObserver(obsID string) error {
	ev.sync.Lock()
	defer ev.sync.Unlock()

	delete(ev.handlerList, obsID)

	return nil
}

// process runs the handlers in registration order on the caller's goroutine.
func (ev *Event) process(log tplog.Logger, ctx context.Context, data interface{}) error {
	if data == nil || reflect.TypeOf(data).String() != ev.DataType {
		err := fmt.Errorf("Invalid event data type: expected %s, actual %v", ev.DataType, reflect.TypeOf(data))
		log.Errorf("%v", err)
		return err
	}

	ev.sync.RLock()
	observers := make([]*observer, 0, len(ev.handlerList))
	for _, obs := range ev.handlerList {
		observers = append(observers, obs)
	}
	ev.sync.RUnlock()

	sort.Slice(observers, func(i, j int) bool { return observers[i].seq < observers[j].seq })

	for _, obs := range observers {
		if err := obs.handler(ctx, data); err != nil {
			log.Warnf("event %s handler err: %v", ev.Name, err)
		}
	}

	return nil
}
