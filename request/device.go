package request

import (
	"context"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/transport"
)

func (p *Pipeline) handleAccountInfo(ctx context.Context, inf *inflight, done *completion) {
	profile, err := p.accounts.Profile()
	if err != nil {
		p.log.Errorf("account info: %v", err)
		done.Deny(transport.ReasonUnsupportedAccounts)
		return
	}
	inf.advance(State_Composing)

	resp, err := account.NewSyncResponse(inf.req.Method, profile)
	if err != nil {
		p.log.Errorf("account info envelope: %v", err)
		done.Deny(transport.ReasonSigningFailure)
		return
	}
	done.Approve(resp)
}

func (p *Pipeline) handleAddDevice(ctx context.Context, inf *inflight, done *completion) {
	var device account.DeviceRequest
	if err := p.decodeParam(inf, &device); err != nil {
		done.Deny(transport.ReasonDecodeFailure)
		return
	}
	if err := device.Validate(); err != nil {
		p.log.Warnf("add device: %v", err)
		done.Deny(transport.ReasonDecodeFailure)
		return
	}

	prompt := &approval.DevicePrompt{Peer: inf.session.Peer, Device: device}
	p.ask(ctx, inf, prompt, done, func() {
		if err := p.devices.AddDeviceKey(ctx, &device); err != nil {
			p.log.Errorf("add device key %s: %v", device.DeviceInfo.DeviceID, err)
			done.Deny(transport.ReasonSigningFailure)
			p.notifier.Toast(ToastSignFailed)
			return
		}
		done.Approve(struct{}{})
	})
}
