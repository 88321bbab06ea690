package request

import (
	"context"
	"errors"
	"fmt"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	"github.com/TopiaNetwork/flowlink/crypt"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/session"
	"github.com/TopiaNetwork/flowlink/transport"
)

var (
	ErrSigning           = errors.New("signing failure")
	ErrTransport         = errors.New("transport failure")
	ErrUnsupportedMethod = errors.New("unsupported method")
)

const (
	ToastSignFailed  = "Signing failed"
	ToastReplyFailed = "Failed to reply to the dApp, please retry from the dApp"
)

// Responder is the part of the transport that replies to requests.
type Responder interface {
	Respond(ctx context.Context, response *transport.Response) error
}

type Pipeline struct {
	log       tplog.Logger
	config    *tpconfig.RequestConfiguration
	registry  *handler.Registry
	responder Responder
	store     *session.Store
	signer    crypt.Signer
	accounts  account.Provider
	devices   account.DeviceKeys
	surface   approval.Surface
	notifier  approval.Notifier
	table     *table
	redirect  func(url string)
}

func NewPipeline(log tplog.Logger,
	config *tpconfig.RequestConfiguration,
	registry *handler.Registry,
	responder Responder,
	store *session.Store,
	signer crypt.Signer,
	accounts account.Provider,
	devices account.DeviceKeys,
	surface approval.Surface,
	notifier approval.Notifier) (*Pipeline, error) {
	t, err := newTable(config.AnsweredCacheSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		log:       log,
		config:    config,
		registry:  registry,
		responder: responder,
		store:     store,
		signer:    signer,
		accounts:  accounts,
		devices:   devices,
		surface:   surface,
		notifier:  notifier,
		table:     t,
	}
	p.redirect = p.redirectAsync

	return p, nil
}

// Handle takes one inbound request to its reply, or to the approval surface. The returned
// state is where the request stands when Handle returns.
func (p *Pipeline) Handle(ctx context.Context, req *transport.Request) State {
	log := tplog.WithField(p.log, "request", requestKey(req.Topic, req.ID))

	inf := newInflight(req)
	admitted, superseded := p.table.admit(inf)
	if !admitted {
		log.Debugf("ignore re-delivered %s", req.Method)
		return State_Ignored
	}
	if superseded != nil {
		log.Infof("request %d superseded by %d", superseded.req.ID, req.ID)
		p.completion(ctx, superseded).Deny(transport.ReasonSuperseded)
	}

	done := p.completion(ctx, inf)

	sess, ok := p.store.Session(req.Topic)
	if !ok {
		log.Warnf("%s for unknown session", req.Method)
		done.Deny(transport.ReasonSessionGone)
		return inf.State()
	}
	inf.session = sess
	inf.advance(State_Classified)
	log.Debugf("%s classified as %s", req.Method, inf.category)

	switch inf.category {
	case Category_Authentication:
		p.handleAuthn(ctx, inf, done)
	case Category_PreAuthorization:
		p.handlePreAuthz(ctx, inf, done)
	case Category_Authorization:
		p.handleAuthz(ctx, inf, done)
	case Category_MessageSigning:
		p.handleUserSign(ctx, inf, done)
	case Category_EVMPersonalSign:
		p.handlePersonalSign(ctx, inf, done)
	case Category_EVMDelegated:
		p.handleDelegated(ctx, inf, done)
	case Category_AccountInfo:
		p.handleAccountInfo(ctx, inf, done)
	case Category_AddDeviceInfo:
		p.handleAddDevice(ctx, inf, done)
	default:
		log.Infof("%v: %s", ErrUnsupportedMethod, req.Method)
		done.Deny(transport.ReasonUnsupportedMethod)
	}

	return inf.State()
}

// SessionDeleted frees the slot of a deleted session. A request of that session still
// awaiting approval declines when the user answers.
func (p *Pipeline) SessionDeleted(topic string) {
	if inf := p.table.dropTopic(topic); inf != nil {
		p.log.Infof("session %s deleted with request %d in flight", topic, inf.req.ID)
	}
}

// Current returns the id of the request holding topic's slot.
func (p *Pipeline) Current(topic string) (int64, bool) {
	inf, ok := p.table.current(topic)
	if !ok {
		return 0, false
	}
	return inf.req.ID, true
}

// InFlight is the number of sessions with a request not yet replied to.
func (p *Pipeline) InFlight() int {
	return p.table.inFlight()
}

func (p *Pipeline) completion(ctx context.Context, inf *inflight) *completion {
	return &completion{ctx: ctx, pipeline: p, inf: inf}
}

// ask suspends inf on the approval surface; compose runs once the user approves.
func (p *Pipeline) ask(ctx context.Context, inf *inflight, prompt approval.Prompt, done *completion, compose func()) {
	inf.setPrompt(prompt)
	if !inf.advance(State_AwaitingApproval) {
		return
	}

	p.surface.Ask(ctx, prompt, func(approved bool) {
		if inf.State() == State_Replied {
			return
		}
		if _, ok := p.store.Session(inf.req.Topic); !ok {
			done.Deny(transport.ReasonSessionGone)
			return
		}
		if !approved {
			done.Deny(transport.ReasonUserRejected)
			return
		}
		if inf.advance(State_Composing) {
			compose()
		}
	})
}

func (p *Pipeline) reply(ctx context.Context, inf *inflight, resp *transport.Response) {
	if !p.table.markAnswered(inf) {
		p.log.Debugf("request %s already answered", inf.key())
		return
	}
	inf.state.Store(uint32(State_Replied))

	if prompt := inf.currentPrompt(); prompt != nil {
		p.surface.Dismiss(prompt)
	}

	p.log.Debugf("reply %s declined=%v", inf.key(), resp.IsError())
	if err := p.responder.Respond(ctx, resp); err != nil {
		p.log.Errorf("respond %s: %v", inf.key(), fmt.Errorf("%w: %v", ErrTransport, err))
		p.table.forget(inf)
		if resp.Error != transport.ReasonSessionGone {
			p.notifier.Toast(ToastReplyFailed)
		}
		return
	}

	if inf.category != Category_Unsupported && resp.Error != transport.ReasonSuperseded && inf.session != nil {
		if url := inf.session.Peer.RedirectURL(); url != "" {
			p.redirect(url)
		}
	}
}

func (p *Pipeline) redirectAsync(url string) {
	go func() {
		if err := p.notifier.Redirect(url); err != nil {
			p.log.Debugf("redirect to %s err: %v", url, err)
		}
	}()
}

func (p *Pipeline) signFailed(inf *inflight, done *completion, err error) {
	p.log.Errorf("%s: %v", inf.req.Method, fmt.Errorf("%w: %v", ErrSigning, err))
	done.Deny(transport.ReasonSigningFailure)
	p.notifier.Toast(ToastSignFailed)
}
