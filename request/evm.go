package request

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/crypt"
	"github.com/TopiaNetwork/flowlink/handler"
	"github.com/TopiaNetwork/flowlink/transport"
)

func (p *Pipeline) handlePersonalSign(ctx context.Context, inf *inflight, done *completion) {
	param := gjson.GetBytes(inf.req.Params, "0")
	if param.Type != gjson.String {
		p.log.Warnf("personal_sign without message")
		done.Deny(transport.ReasonDecodeFailure)
		return
	}
	message, err := crypt.DecodeHex(param.Str)
	if err != nil {
		p.log.Warnf("personal_sign message not hex: %v", err)
		done.Deny(transport.ReasonDecodeFailure)
		return
	}

	c := chain.FromCAIP2(inf.req.ChainID)
	prompt := &approval.MessagePrompt{
		Peer:    inf.session.Peer,
		Chain:   c,
		Method:  inf.req.Method,
		Message: string(message),
	}
	p.ask(ctx, inf, prompt, done, func() {
		proof, err := crypt.SignPersonalMessage(ctx, p.signer, p.config.CapabilityPath, message)
		if err != nil {
			p.signFailed(inf, done, err)
			return
		}
		done.Approve(proof)
	})
}

// delegator binds an EVM request to the wallet's EVM bridge.
type delegator interface {
	Prepare(req *transport.Request, session *transport.Session) (*handler.Delegation, *transport.RPCError)
}

// handleDelegated asks for the EVM bridge request like any other prompt, the bridge only
// runs once the user approves a request that still holds its slot.
func (p *Pipeline) handleDelegated(ctx context.Context, inf *inflight, done *completion) {
	h := p.registry.ForRequest(inf.req)
	evm, ok := h.(delegator)
	if h == nil || h != p.registry.EVM() || !ok {
		done.Deny(transport.ReasonUnsupportedChains)
		return
	}

	d, reason := evm.Prepare(inf.req, inf.session)
	if reason != nil {
		done.Deny(reason)
		return
	}

	p.ask(ctx, inf, d.Prompt, done, func() {
		result, err := d.Run(ctx)
		if err != nil {
			p.signFailed(inf, done, err)
			return
		}
		done.Approve(result)
	})
}
