package secp256

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/TopiaNetwork/flowlink/crypt"
	tpcrtypes "github.com/TopiaNetwork/flowlink/crypt/types"
	tplog "github.com/TopiaNetwork/flowlink/log"
)

const (
	PublicKeyBytes  = 65 //65 bytes
	PrivateKeyBytes = 32 //32 bytes
	SignatureBytes  = 64 //r||s
)

var ErrNoRoleKey = errors.New("no key configured for role")

// LocalSigner signs with secp256k1 keys held in memory, hashing with SHA3-256.
type LocalSigner struct {
	log      tplog.Logger
	sync     sync.RWMutex
	address  string
	keyIndex uint32
	primary  *ecdsa.PrivateKey
	roleKeys map[tpcrtypes.SignRole]*ecdsa.PrivateKey
}

var _ crypt.Signer = (*LocalSigner)(nil)

func New(log tplog.Logger, address string, keyIndex uint32, priKey tpcrtypes.PrivateKey) (*LocalSigner, error) {
	key, err := crypto.ToECDSA(priKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &LocalSigner{
		log:      log,
		address:  address,
		keyIndex: keyIndex,
		primary:  key,
		roleKeys: make(map[tpcrtypes.SignRole]*ecdsa.PrivateKey),
	}, nil
}

func NewFromHex(log tplog.Logger, address string, keyIndex uint32, hexKey string) (*LocalSigner, error) {
	priKey, err := crypt.DecodeHex(hexKey)
	if err != nil {
		return nil, err
	}
	return New(log, address, keyIndex, priKey)
}

func (s *LocalSigner) SetRoleKey(role tpcrtypes.SignRole, priKey tpcrtypes.PrivateKey) error {
	key, err := crypto.ToECDSA(priKey)
	if err != nil {
		return fmt.Errorf("invalid %s key: %w", role, err)
	}

	s.sync.Lock()
	defer s.sync.Unlock()

	s.roleKeys[role] = key
	return nil
}

func (s *LocalSigner) CurrentAddress() string {
	return s.address
}

func (s *LocalSigner) CurrentKeyIndex() uint32 {
	return s.keyIndex
}

func (s *LocalSigner) Sign(ctx context.Context, data []byte) (tpcrtypes.Signature, error) {
	return s.sign(s.primary, data)
}

func (s *LocalSigner) SignForRole(ctx context.Context, role tpcrtypes.SignRole, data []byte) (tpcrtypes.Signature, error) {
	s.sync.RLock()
	key, ok := s.roleKeys[role]
	s.sync.RUnlock()

	if !ok {
		if role == tpcrtypes.SignRole_Payer {
			return nil, fmt.Errorf("%w: %s", ErrNoRoleKey, role)
		}
		key = s.primary
	}

	return s.sign(key, data)
}

func (s *LocalSigner) sign(key *ecdsa.PrivateKey, data []byte) (tpcrtypes.Signature, error) {
	sig, err := crypto.Sign(crypt.SHA3Hash(data), key)
	if err != nil {
		s.log.Errorf("sign err: %v", err)
		return nil, err
	}

	return sig[:SignatureBytes], nil
}

func (s *LocalSigner) PublicKey() tpcrtypes.PublicKey {
	return crypto.FromECDSAPub(&s.primary.PublicKey)
}

func GeneratePriPubKey() (tpcrtypes.PrivateKey, tpcrtypes.PublicKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}

	return crypto.FromECDSA(key), crypto.FromECDSAPub(&key.PublicKey), nil
}

func Verify(pubKey tpcrtypes.PublicKey, data []byte, sig tpcrtypes.Signature) bool {
	if len(sig) != SignatureBytes {
		return false
	}
	return crypto.VerifySignature(pubKey, crypt.SHA3Hash(data), sig)
}
