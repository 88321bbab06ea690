package proposal

import (
	"context"
	"sync"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/session"
	"github.com/TopiaNetwork/flowlink/transport"
)

const ToastConnectFailed = "Connection failed, please try again"

type Outcome byte

const (
	Outcome_Unknown Outcome = iota
	Outcome_Approved
	Outcome_Rejected
	Outcome_Prompted
	Outcome_Failed
)

func (o Outcome) String() string {
	switch o {
	case Outcome_Approved:
		return "approved"
	case Outcome_Rejected:
		return "rejected"
	case Outcome_Prompted:
		return "prompted"
	case Outcome_Failed:
		return "failed"
	}
	return "unknown"
}

// Settler is the part of the transport that settles proposals.
type Settler interface {
	Approve(ctx context.Context, proposalID uint64, namespaces transport.Namespaces) error
	RejectSession(ctx context.Context, proposalID uint64, reason *transport.RPCError) error
}

type Pipeline struct {
	log      tplog.Logger
	registry *handler.Registry
	settler  Settler
	store    *session.Store
	network  chain.NetworkProvider
	accounts account.Provider
	surface  approval.Surface
	notifier approval.Notifier
}

func NewPipeline(log tplog.Logger,
	registry *handler.Registry,
	settler Settler,
	store *session.Store,
	network chain.NetworkProvider,
	accounts account.Provider,
	surface approval.Surface,
	notifier approval.Notifier) *Pipeline {
	return &Pipeline{
		log:      log,
		registry: registry,
		settler:  settler,
		store:    store,
		network:  network,
		accounts: accounts,
		surface:  surface,
		notifier: notifier,
	}
}

// Process drives proposal to exactly one approve or reject. Outcome_Prompted means the
// decision is pending on the approval surface.
func (p *Pipeline) Process(ctx context.Context, proposal *transport.Proposal) Outcome {
	log := tplog.WithField(p.log, "proposal", proposal.ID)

	if !p.registry.Supports(proposal) {
		log.Infof("no supported namespace from %s", proposal.Proposer.URL)
		return p.reject(ctx, proposal, transport.ReasonUnsupportedNamespace)
	}

	h := p.registry.ForProposal(proposal)
	requested := h.ClassifyChain(proposal)
	if requested == chain.Unknown {
		log.Infof("unresolvable %s chain", h.Family())
		return p.reject(ctx, proposal, transport.ReasonUnsupportedChains)
	}

	active := p.network.CurrentChainID()
	if requested != active {
		log.Infof("network mismatch: requested %s, active %s", requested, active)
		outcome := p.reject(ctx, proposal, transport.ReasonNetworkMismatch)
		p.notifier.SwitchNetwork(requested, active)
		return outcome
	}

	address, err := p.accounts.Address(requested)
	if err != nil {
		log.Warnf("no account on %s: %v", requested, err)
		return p.reject(ctx, proposal, transport.ReasonUnsupportedAccounts)
	}

	if p.store.HasActivePairing(proposal.PairingTopic) {
		log.Infof("known pairing %s, approving", proposal.PairingTopic)
		return p.approve(ctx, proposal, h, requested, address)
	}

	prompt := &approval.SessionPrompt{
		Peer:    proposal.Proposer,
		Chain:   requested,
		Address: address,
	}
	var once sync.Once
	p.surface.Ask(ctx, prompt, func(approved bool) {
		once.Do(func() {
			p.surface.Dismiss(prompt)
			if approved {
				p.approve(ctx, proposal, h, requested, address)
			} else {
				p.reject(ctx, proposal, transport.ReasonUserRejected)
			}
		})
	})

	return Outcome_Prompted
}

func (p *Pipeline) approve(ctx context.Context, proposal *transport.Proposal, h handler.Handler, c chain.ChainID, address string) Outcome {
	namespaces := h.ApprovedNamespaces(proposal, c, address)
	if err := p.settler.Approve(ctx, proposal.ID, namespaces); err != nil {
		p.log.Errorf("approve proposal %d err: %v", proposal.ID, err)
		p.notifier.Toast(ToastConnectFailed)
		return Outcome_Failed
	}

	if err := p.store.Reload(ctx); err != nil {
		p.log.Warnf("reload sessions after approve err: %v", err)
	}
	if err := p.store.ReloadPairings(ctx); err != nil {
		p.log.Warnf("reload pairings after approve err: %v", err)
	}

	return Outcome_Approved
}

func (p *Pipeline) reject(ctx context.Context, proposal *transport.Proposal, reason *transport.RPCError) Outcome {
	if err := p.settler.RejectSession(ctx, proposal.ID, reason); err != nil {
		p.log.Errorf("reject proposal %d (%s) err: %v", proposal.ID, reason.Message, err)
		p.notifier.Toast(ToastConnectFailed)
		return Outcome_Failed
	}

	return Outcome_Rejected
}
