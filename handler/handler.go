package handler

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set"

	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/transport"
)

// Completion is the one-shot reply handle a handler answers a request through.
type Completion interface {
	Approve(result interface{})
	Deny(reason *transport.RPCError)
}

// Handler is the per chain family capability.
type Handler interface {
	Family() string

	// ClassifyChain resolves the chain the proposal targets within this family, chain.Unknown when none is recognized.
	ClassifyChain(proposal *transport.Proposal) chain.ChainID

	ApprovedNamespaces(proposal *transport.Proposal, c chain.ChainID, address string) transport.Namespaces

	// HandleRequest performs family specific request handling and answers exactly once through done.
	HandleRequest(ctx context.Context, req *transport.Request, session *transport.Session, done Completion)
}

// familyNamespaces collects the namespaces of the proposal belonging to family, required first.
func familyNamespaces(proposal *transport.Proposal, family string) []transport.Namespace {
	var out []transport.Namespace
	proposal.AllNamespaces(func(key string, ns transport.Namespace) {
		keyFamily, ref := chain.SplitCAIP2(key)
		if keyFamily != family {
			return
		}
		if ref != "" && len(ns.Chains) == 0 {
			ns.Chains = []string{key}
		}
		out = append(out, ns)
	})
	return out
}

func classify(proposal *transport.Proposal, family string) chain.ChainID {
	for _, ns := range familyNamespaces(proposal, family) {
		for _, id := range ns.Chains {
			if c := chain.FromCAIP2(id); c != chain.Unknown && c.Family() == family {
				return c
			}
		}
	}
	return chain.Unknown
}

func approvedNamespace(proposal *transport.Proposal, family string, c chain.ChainID, address string, supported mapset.Set) transport.Namespace {
	methods := mapset.NewSet()
	events := mapset.NewSet()
	for _, ns := range familyNamespaces(proposal, family) {
		for _, m := range ns.Methods {
			if supported.Contains(m) {
				methods.Add(m)
			}
		}
		for _, e := range ns.Events {
			events.Add(e)
		}
	}

	return transport.Namespace{
		Chains:   []string{c.CAIP2()},
		Methods:  sortedStrings(methods),
		Events:   sortedStrings(events),
		Accounts: []string{chain.AccountID(c, address)},
	}
}

func sortedStrings(set mapset.Set) []string {
	out := make([]string, 0, set.Cardinality())
	for _, v := range set.ToSlice() {
		out = append(out, v.(string))
	}
	sort.Strings(out)
	return out
}

func stringSet(values ...string) mapset.Set {
	set := mapset.NewSet()
	for _, v := range values {
		set.Add(v)
	}
	return set
}
