package request

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

const (
	fclVersion       = "1.0.0"
	serviceMethodRPC = "WC/RPC"
	serviceDATA      = "DATA"

	statusApproved = "APPROVED"
)

// Roles of the wallet in a signable.
type Roles struct {
	Proposer   bool `json:"proposer"`
	Authorizer bool `json:"authorizer"`
	Payer      bool `json:"payer"`
}

// PayerOnly is true when the wallet only pays fees for the transaction.
func (r Roles) PayerOnly() bool {
	return r.Payer && !r.Proposer && !r.Authorizer
}

// Signable is the transaction envelope an authorization request carries.
type Signable struct {
	FType   string            `json:"f_type"`
	FVsn    string            `json:"f_vsn"`
	Message string            `json:"message"`
	Addr    string            `json:"addr"`
	KeyID   uint32            `json:"keyId"`
	Roles   Roles             `json:"roles"`
	Cadence string            `json:"cadence"`
	Args    []json.RawMessage `json:"args"`
	Voucher *Voucher          `json:"voucher,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

type Voucher struct {
	Cadence      string        `json:"cadence"`
	RefBlock     string        `json:"refBlock"`
	ComputeLimit uint64        `json:"computeLimit"`
	Arguments    []interface{} `json:"arguments"`
	ProposalKey  struct {
		Address     string `json:"address"`
		KeyID       uint32 `json:"keyId"`
		SequenceNum uint64 `json:"sequenceNum"`
	} `json:"proposalKey"`
	Payer       string   `json:"payer"`
	Authorizers []string `json:"authorizers"`
}

func (s *Signable) Script() string {
	if s.Cadence != "" {
		return s.Cadence
	}
	if s.Voucher != nil {
		return s.Voucher.Cadence
	}
	return ""
}

// UserSignRequest is the payload of a user signature request, Message being hex.
type UserSignRequest struct {
	Message string `json:"message"`
}

type CompositeSignature struct {
	FType     string `json:"f_type"`
	FVsn      string `json:"f_vsn"`
	Addr      string `json:"addr"`
	KeyID     uint32 `json:"keyId"`
	Signature string `json:"signature"`
}

func NewCompositeSignature(addr string, keyID uint32, sig []byte) *CompositeSignature {
	return &CompositeSignature{
		FType:     "CompositeSignature",
		FVsn:      fclVersion,
		Addr:      withHexPrefix(addr),
		KeyID:     keyID,
		Signature: hex.EncodeToString(sig),
	}
}

type Identity struct {
	Address string `json:"address"`
	KeyID   uint32 `json:"keyId"`
}

type Provider struct {
	Address     string `json:"address,omitempty"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

type Service struct {
	FType    string      `json:"f_type"`
	FVsn     string      `json:"f_vsn"`
	Type     string      `json:"type"`
	UID      string      `json:"uid"`
	Endpoint string      `json:"endpoint"`
	Method   string      `json:"method"`
	ID       string      `json:"id,omitempty"`
	Identity *Identity   `json:"identity,omitempty"`
	Provider *Provider   `json:"provider,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

type AccountProofData struct {
	FType      string                `json:"f_type"`
	FVsn       string                `json:"f_vsn"`
	Address    string                `json:"address"`
	Nonce      string                `json:"nonce"`
	Signatures []*CompositeSignature `json:"signatures"`
}

type AuthnData struct {
	FType    string     `json:"f_type"`
	FVsn     string     `json:"f_vsn"`
	Addr     string     `json:"addr"`
	Services []*Service `json:"services"`
}

type PreAuthzData struct {
	FType         string     `json:"f_type"`
	FVsn          string     `json:"f_vsn"`
	Proposer      *Service   `json:"proposer"`
	Payer         []*Service `json:"payer"`
	Authorization []*Service `json:"authorization"`
}

type PollingResponse struct {
	FType  string      `json:"f_type"`
	FVsn   string      `json:"f_vsn"`
	Status string      `json:"status"`
	Reason *string     `json:"reason"`
	Data   interface{} `json:"data"`
}

func approvedResponse(data interface{}) *PollingResponse {
	return &PollingResponse{
		FType:  "PollingResponse",
		FVsn:   fclVersion,
		Status: statusApproved,
		Data:   data,
	}
}

func withHexPrefix(addr string) string {
	if addr == "" || strings.HasPrefix(addr, "0x") {
		return addr
	}
	return "0x" + addr
}
