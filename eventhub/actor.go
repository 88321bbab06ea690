package eventhub

import (
	"context"

	"github.com/AsynkronIT/protoactor-go/actor"

	tplog "github.com/TopiaNetwork/flowlink/log"
)

type actorIDKey struct{}

type EventActor struct {
	log       tplog.Logger
	pid       *actor.PID
	evManager *eventManager
}

func createEventActor(log tplog.Logger, sysActor *actor.ActorSystem, name string, evManager *eventManager) (*actor.PID, error) {
	evActor := &EventActor{
		log:       log,
		evManager: evManager,
	}
	props := actor.PropsFromProducer(func() actor.Actor {
		return evActor
	})
	pid, err := sysActor.Root.SpawnNamed(props, name)

	evActor.pid = pid

	return pid, err
}

// ActorID returns the id of the event actor dispatching the current handler, empty outside a dispatch.
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorIDKey{}).(string)
	return id
}

func (ea *EventActor) Receive(actorCtx actor.Context) {
	switch msg := actorCtx.Message().(type) {
	case *actor.Started:
		ea.log.Debug("Started, event actor ready")
	case *actor.Stopping:
		ea.log.Debug("Stopping, actor is about to shut down")
	case *actor.Stopped:
		ea.log.Debug("Stopped, actor and its children are stopped")
	case *actor.Restarting:
		ea.log.Warn("Restarting, actor is about to restart")
	case *EventMsg:
		ea.log.Debugf("Received event message name=%s", msg.Name)
		ctx := context.WithValue(context.Background(), actorIDKey{}, actorCtx.Self().Id)
		if err := ea.evManager.dispatch(ctx, ea.log, msg); err != nil {
			ea.log.Errorf("dispatch event %s err: %v", msg.Name, err)
		}
	}
}
