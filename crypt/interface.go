package crypt

import (
	"context"

	tpcrtypes "github.com/TopiaNetwork/flowlink/crypt/types"
)

//go:generate mockgen -destination signer_mock.go -package crypt . Signer

// Signer is the wallet's key service. Sign and SignForRole receive the domain tagged
// message and return a raw 64 byte r||s signature.
type Signer interface {
	Sign(ctx context.Context, data []byte) (tpcrtypes.Signature, error)

	// SignForRole signs with the key material bound to role, the fee payer key being distinct.
	SignForRole(ctx context.Context, role tpcrtypes.SignRole, data []byte) (tpcrtypes.Signature, error)

	CurrentAddress() string

	CurrentKeyIndex() uint32
}
