package handler

import (
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/transport"
)

// Registry is the closed table of the two chain family handlers.
type Registry struct {
	native Handler
	evm    Handler
}

func NewRegistry(native Handler, evm Handler) *Registry {
	return &Registry{
		native: native,
		evm:    evm,
	}
}

func proposalFamilies(proposal *transport.Proposal) (native bool, evm bool) {
	mark := func(id string) {
		switch family, _ := chain.SplitCAIP2(id); family {
		case chain.FamilyNative:
			native = true
		case chain.FamilyEVM:
			evm = true
		}
	}
	proposal.AllNamespaces(func(key string, ns transport.Namespace) {
		mark(key)
		for _, id := range ns.Chains {
			mark(id)
		}
	})
	return
}

// Supports reports whether any registered family tag appears in the proposal.
func (r *Registry) Supports(proposal *transport.Proposal) bool {
	native, evm := proposalFamilies(proposal)
	return native || evm
}

// ForProposal selects the EVM handler when the EVM tag is present, the native handler otherwise.
func (r *Registry) ForProposal(proposal *transport.Proposal) Handler {
	if _, evm := proposalFamilies(proposal); evm {
		return r.evm
	}
	return r.native
}

func (r *Registry) ForRequest(req *transport.Request) Handler {
	if family, _ := chain.SplitCAIP2(req.ChainID); family == chain.FamilyEVM {
		return r.evm
	}
	return r.native
}

func (r *Registry) Native() Handler {
	return r.native
}

func (r *Registry) EVM() Handler {
	return r.evm
}
