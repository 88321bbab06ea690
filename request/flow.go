package request

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/crypt"
	tpcrtypes "github.com/TopiaNetwork/flowlink/crypt/types"
	"github.com/TopiaNetwork/flowlink/handler"
	"github.com/TopiaNetwork/flowlink/transport"
)

const (
	serviceAuthn         = "authn"
	serviceAuthz         = "authz"
	servicePreAuthz      = "pre-authz"
	serviceUserSignature = "user-signature"
	serviceAccountProof  = "account-proof"

	walletName = "flowlink"
)

type authnRequest struct {
	Nonce         string `json:"nonce"`
	AppIdentifier string `json:"appIdentifier"`
	Data          *struct {
		Nonce         string `json:"nonce"`
		AppIdentifier string `json:"appIdentifier"`
	} `json:"data"`
}

func (r *authnRequest) proof() (appID string, nonce string) {
	appID, nonce = r.AppIdentifier, r.Nonce
	if r.Data != nil {
		if appID == "" {
			appID = r.Data.AppIdentifier
		}
		if nonce == "" {
			nonce = r.Data.Nonce
		}
	}
	return
}

// nativeChain resolves the native chain a request targets, from its chain id or else from the
// chains the session approved.
func nativeChain(inf *inflight) chain.ChainID {
	if c := chain.FromCAIP2(inf.req.ChainID); c.IsNative() {
		return c
	}
	if inf.session != nil {
		for _, key := range inf.session.Namespaces.Keys() {
			for _, id := range inf.session.Namespaces[key].Chains {
				if c := chain.FromCAIP2(id); c.IsNative() {
					return c
				}
			}
		}
	}
	return chain.Unknown
}

func (p *Pipeline) nativeAddress(inf *inflight) (chain.ChainID, string, error) {
	c := nativeChain(inf)
	if c == chain.Unknown {
		return c, "", fmt.Errorf("no native chain for %q", inf.req.ChainID)
	}
	address, err := p.accounts.Address(c)
	if err != nil {
		return c, "", err
	}
	return c, address, nil
}

func (p *Pipeline) service(serviceType string, address string) *Service {
	keyID := p.signer.CurrentKeyIndex()
	return &Service{
		FType:    "Service",
		FVsn:     fclVersion,
		Type:     serviceType,
		UID:      walletName + "#" + serviceType,
		Endpoint: serviceEndpoint(serviceType),
		Method:   serviceMethodRPC,
		ID:       address,
		Identity: &Identity{Address: withHexPrefix(address), KeyID: keyID},
		Provider: &Provider{Address: withHexPrefix(address), Name: walletName},
	}
}

func serviceEndpoint(serviceType string) string {
	switch serviceType {
	case serviceAuthn:
		return handler.MethodAuthn
	case serviceAuthz:
		return handler.MethodAuthz
	case servicePreAuthz:
		return handler.MethodPreAuthz
	case serviceUserSignature:
		return handler.MethodUserSign
	}
	return ""
}

func (p *Pipeline) handleAuthn(ctx context.Context, inf *inflight, done *completion) {
	var req authnRequest
	if raw, err := firstParam(inf.req.Params); err == nil {
		if err = DecodePayload(raw, &req); err != nil {
			p.log.Warnf("decode %s: %v", inf.req.Method, err)
			done.Deny(transport.ReasonDecodeFailure)
			return
		}
	}

	_, address, err := p.nativeAddress(inf)
	if err != nil {
		p.log.Errorf("authn address: %v", err)
		done.Deny(transport.ReasonUnsupportedAccounts)
		return
	}
	inf.advance(State_Composing)

	services := []*Service{
		p.service(serviceAuthn, address),
		p.service(serviceAuthz, address),
	}
	if p.config.PayerAddress != "" {
		services = append(services, p.service(servicePreAuthz, address))
	}
	services = append(services, p.service(serviceUserSignature, address))

	if appID, nonce := req.proof(); nonce != "" {
		proof, err := p.accountProof(ctx, appID, address, nonce)
		if err != nil {
			p.signFailed(inf, done, err)
			return
		}
		services = append(services, proof)
	}

	done.Approve(approvedResponse(&AuthnData{
		FType:    "AuthnResponse",
		FVsn:     fclVersion,
		Addr:     withHexPrefix(address),
		Services: services,
	}))
}

func (p *Pipeline) accountProof(ctx context.Context, appID string, address string, nonce string) (*Service, error) {
	message, err := crypt.AccountProofMessage(appID, address, nonce)
	if err != nil {
		return nil, err
	}
	sig, err := p.signer.Sign(ctx, message)
	if err != nil {
		return nil, err
	}

	return &Service{
		FType:  "Service",
		FVsn:   fclVersion,
		Type:   serviceAccountProof,
		Method: serviceDATA,
		UID:    walletName + "#" + serviceAccountProof,
		Data: &AccountProofData{
			FType:      "account-proof",
			FVsn:       "2.0.0",
			Address:    withHexPrefix(address),
			Nonce:      nonce,
			Signatures: []*CompositeSignature{NewCompositeSignature(address, p.signer.CurrentKeyIndex(), sig)},
		},
	}, nil
}

func (p *Pipeline) handlePreAuthz(ctx context.Context, inf *inflight, done *completion) {
	_, address, err := p.nativeAddress(inf)
	if err != nil {
		p.log.Errorf("pre-authz address: %v", err)
		done.Deny(transport.ReasonUnsupportedAccounts)
		return
	}
	inf.advance(State_Composing)

	authz := p.service(serviceAuthz, address)
	payer := authz
	if p.config.PayerAddress != "" {
		payer = p.service(serviceAuthz, p.config.PayerAddress)
		payer.Identity.KeyID = p.config.PayerKeyIndex
	}

	done.Approve(approvedResponse(&PreAuthzData{
		FType:         "PreAuthzResponse",
		FVsn:          fclVersion,
		Proposer:      authz,
		Payer:         []*Service{payer},
		Authorization: []*Service{authz},
	}))
}

func (p *Pipeline) handleAuthz(ctx context.Context, inf *inflight, done *completion) {
	var signable Signable
	if err := p.decodeParam(inf, &signable); err != nil {
		done.Deny(transport.ReasonDecodeFailure)
		return
	}
	message, err := hex.DecodeString(signable.Message)
	if err != nil {
		p.log.Warnf("authz message not hex: %v", err)
		done.Deny(transport.ReasonDecodeFailure)
		return
	}

	if signable.Roles.PayerOnly() {
		inf.advance(State_AutoApproved)
		p.signAsPayer(ctx, inf, done, &signable, message)
		return
	}

	prompt := &approval.TransactionPrompt{
		Peer:      inf.session.Peer,
		Chain:     nativeChain(inf),
		Script:    signable.Script(),
		Arguments: signable.Args,
	}
	p.ask(ctx, inf, prompt, done, func() {
		sig, err := p.signer.Sign(ctx, message)
		if err != nil {
			p.signFailed(inf, done, err)
			return
		}
		done.Approve(approvedResponse(NewCompositeSignature(p.signer.CurrentAddress(), p.signer.CurrentKeyIndex(), sig)))
	})
}

func (p *Pipeline) signAsPayer(ctx context.Context, inf *inflight, done *completion, signable *Signable, message []byte) {
	inf.advance(State_Composing)

	sig, err := p.signer.SignForRole(ctx, tpcrtypes.SignRole_Payer, message)
	if err != nil {
		p.signFailed(inf, done, err)
		return
	}

	address, keyID := p.config.PayerAddress, p.config.PayerKeyIndex
	if address == "" {
		address, keyID = signable.Addr, signable.KeyID
	}
	done.Approve(approvedResponse(NewCompositeSignature(address, keyID, sig)))
}

func (p *Pipeline) handleUserSign(ctx context.Context, inf *inflight, done *completion) {
	var req UserSignRequest
	if err := p.decodeParam(inf, &req); err != nil {
		done.Deny(transport.ReasonDecodeFailure)
		return
	}
	message, err := crypt.DecodeHex(req.Message)
	if err != nil {
		message = []byte(req.Message)
	}

	prompt := &approval.MessagePrompt{
		Peer:    inf.session.Peer,
		Chain:   nativeChain(inf),
		Method:  inf.req.Method,
		Message: string(message),
	}
	p.ask(ctx, inf, prompt, done, func() {
		sig, err := p.signer.Sign(ctx, crypt.UserMessage(message))
		if err != nil {
			p.signFailed(inf, done, err)
			return
		}
		done.Approve(approvedResponse(NewCompositeSignature(p.signer.CurrentAddress(), p.signer.CurrentKeyIndex(), sig)))
	})
}

// decodeParam decodes the request's first parameter into v, logging decode failures.
func (p *Pipeline) decodeParam(inf *inflight, v interface{}) error {
	raw, err := firstParam(inf.req.Params)
	if err == nil {
		err = DecodePayload(raw, v)
	}
	if err != nil {
		p.log.Warnf("decode %s params: %v", inf.req.Method, err)
	}
	return err
}
