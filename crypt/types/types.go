package types

type PrivateKey []byte

type PublicKey []byte

type Signature []byte

type CryptType byte

const (
	CryptType_Unknown CryptType = iota
	CryptType_Secp256
)

// SignRole selects the key material a signature is produced with.
type SignRole byte

const (
	SignRole_Unknown SignRole = iota
	SignRole_Proposer
	SignRole_Authorizer
	SignRole_Payer
)

func (r SignRole) String() string {
	switch r {
	case SignRole_Proposer:
		return "proposer"
	case SignRole_Authorizer:
		return "authorizer"
	case SignRole_Payer:
		return "payer"
	}
	return "unknown"
}
