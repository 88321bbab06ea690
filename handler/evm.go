package handler

import (
	"context"
	"encoding/json"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/gjson"

	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/transport"
)

//go:generate mockgen -destination evm_provider_mock.go -package handler . EVMProvider

// EVMProvider executes the EVM operations the wallet delegates to its EVM bridge.
type EVMProvider interface {
	// SendTransaction submits tx and returns its hash.
	SendTransaction(ctx context.Context, c chain.ChainID, tx json.RawMessage) (string, error)

	SignTypedData(ctx context.Context, c chain.ChainID, address string, typedData json.RawMessage) (string, error)

	WatchAsset(ctx context.Context, c chain.ChainID, asset json.RawMessage) (bool, error)
}

type EVMHandler struct {
	log       tplog.Logger
	provider  EVMProvider
	surface   approval.Surface
	supported mapset.Set
}

func NewEVMHandler(log tplog.Logger, provider EVMProvider, surface approval.Surface) *EVMHandler {
	return &EVMHandler{
		log:       log,
		provider:  provider,
		surface:   surface,
		supported: stringSet(EVMMethods...),
	}
}

func (h *EVMHandler) Family() string {
	return chain.FamilyEVM
}

func (h *EVMHandler) ClassifyChain(proposal *transport.Proposal) chain.ChainID {
	return classify(proposal, chain.FamilyEVM)
}

func (h *EVMHandler) ApprovedNamespaces(proposal *transport.Proposal, c chain.ChainID, address string) transport.Namespaces {
	return transport.Namespaces{
		chain.FamilyEVM: approvedNamespace(proposal, chain.FamilyEVM, c, address, h.supported),
	}
}

// Delegation is an EVM request bound to the provider, waiting for the user's answer.
type Delegation struct {
	Prompt *approval.EVMPrompt
	// Run performs the request once approved.
	Run func(ctx context.Context) (interface{}, error)
}

// Prepare validates req and binds it to the provider. It never asks the user, a nil
// Delegation comes with the reason to decline.
func (h *EVMHandler) Prepare(req *transport.Request, session *transport.Session) (*Delegation, *transport.RPCError) {
	c := chain.FromCAIP2(req.ChainID)
	if !c.IsEVM() {
		return nil, transport.ReasonUnsupportedChains
	}

	var run func(ctx context.Context) (interface{}, error)
	switch req.Method {
	case MethodSendTx:
		tx := gjson.GetBytes(req.Params, "0")
		if !tx.IsObject() {
			return nil, transport.ReasonDecodeFailure
		}
		run = func(ctx context.Context) (interface{}, error) {
			return h.provider.SendTransaction(ctx, c, json.RawMessage(tx.Raw))
		}
	case MethodSignTypedData, MethodSignTypedData3, MethodSignTypedData4:
		address, typedData, err := parseTypedDataParams(req.Params)
		if err != nil {
			h.log.Warnf("invalid %s params: %v", req.Method, err)
			return nil, transport.ReasonDecodeFailure
		}
		run = func(ctx context.Context) (interface{}, error) {
			return h.provider.SignTypedData(ctx, c, address, typedData)
		}
	case MethodWatchAsset:
		asset := gjson.ParseBytes(req.Params)
		if asset.IsArray() {
			asset = asset.Get("0")
		}
		if !asset.Get("options").IsObject() {
			return nil, transport.ReasonDecodeFailure
		}
		run = func(ctx context.Context) (interface{}, error) {
			return h.provider.WatchAsset(ctx, c, json.RawMessage(asset.Raw))
		}
	default:
		return nil, transport.ReasonUnsupportedMethod
	}

	return &Delegation{
		Prompt: &approval.EVMPrompt{Peer: session.Peer, Chain: c, Method: req.Method, Params: req.Params},
		Run:    run,
	}, nil
}

// HandleRequest asks on the handler's own surface. The request pipeline goes through Prepare
// so its prompt follows the pipeline's lifecycle.
func (h *EVMHandler) HandleRequest(ctx context.Context, req *transport.Request, session *transport.Session, done Completion) {
	d, reason := h.Prepare(req, session)
	if reason != nil {
		done.Deny(reason)
		return
	}

	h.surface.Ask(ctx, d.Prompt, func(approved bool) {
		h.surface.Dismiss(d.Prompt)
		if !approved {
			done.Deny(transport.ReasonUserRejected)
			return
		}

		result, err := d.Run(ctx)
		if err != nil {
			h.log.Errorf("%s failed: %v", req.Method, err)
			done.Deny(transport.ReasonSigningFailure)
			return
		}
		done.Approve(result)
	})
}

// parseTypedDataParams accepts [address, typedData] where typedData is a JSON string or object.
func parseTypedDataParams(params json.RawMessage) (string, json.RawMessage, error) {
	address := gjson.GetBytes(params, "0").String()
	if !common.IsHexAddress(address) {
		return "", nil, fmt.Errorf("invalid address %q", address)
	}

	data := gjson.GetBytes(params, "1")
	switch {
	case data.Type == gjson.String && gjson.Valid(data.Str):
		return address, json.RawMessage(data.Str), nil
	case data.IsObject():
		return address, json.RawMessage(data.Raw), nil
	}
	return "", nil, fmt.Errorf("invalid typed data")
}
