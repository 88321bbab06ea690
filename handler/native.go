package handler

import (
	"context"

	mapset "github.com/deckarep/golang-set"

	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/transport"
)

// NativeHandler serves the native family. Its signing methods are composed by the request
// pipeline, so HandleRequest only declines what reaches it.
type NativeHandler struct {
	supported mapset.Set
}

func NewNativeHandler() *NativeHandler {
	return &NativeHandler{supported: stringSet(NativeMethods...)}
}

func (h *NativeHandler) Family() string {
	return chain.FamilyNative
}

func (h *NativeHandler) ClassifyChain(proposal *transport.Proposal) chain.ChainID {
	return classify(proposal, chain.FamilyNative)
}

func (h *NativeHandler) ApprovedNamespaces(proposal *transport.Proposal, c chain.ChainID, address string) transport.Namespaces {
	return transport.Namespaces{
		chain.FamilyNative: approvedNamespace(proposal, chain.FamilyNative, c, address, h.supported),
	}
}

func (h *NativeHandler) HandleRequest(ctx context.Context, req *transport.Request, session *transport.Session, done Completion) {
	done.Deny(transport.ReasonUnsupportedMethod)
}
