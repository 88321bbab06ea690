package crypt

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/TopiaNetwork/flowlink/codec"
)

const DomainTagLength = 32

const (
	UserDomainTag         = "FLOW-V0.0-user"
	AccountProofDomainTag = "FCL-ACCOUNT-PROOF-V0.0"
)

// PaddedDomainTag right pads tag with zero bytes to DomainTagLength.
func PaddedDomainTag(tag string) []byte {
	padded := make([]byte, DomainTagLength)
	copy(padded, tag)
	return padded
}

func WithDomainTag(tag string, message []byte) []byte {
	out := make([]byte, 0, DomainTagLength+len(message))
	out = append(out, PaddedDomainTag(tag)...)
	return append(out, message...)
}

// UserMessage is the payload signed for an arbitrary user signature.
func UserMessage(message []byte) []byte {
	return WithDomainTag(UserDomainTag, message)
}

type accountProof struct {
	AppIdentifier string
	Address       []byte
	Nonce         []byte
}

// AccountProofMessage encodes the ownership proof message for (appID, address, nonce).
// address and nonce are hex strings, with or without 0x prefix.
func AccountProofMessage(appID string, address string, nonce string) ([]byte, error) {
	addr, err := DecodeHex(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	nonceBytes, err := DecodeHex(nonce)
	if err != nil {
		return nil, fmt.Errorf("invalid nonce %q: %w", nonce, err)
	}

	encoded, err := codec.CreateMarshaler(codec.CodecType_RLP).Marshal(&accountProof{
		AppIdentifier: appID,
		Address:       addr,
		Nonce:         nonceBytes,
	})
	if err != nil {
		return nil, err
	}

	return WithDomainTag(AccountProofDomainTag, encoded), nil
}

func SHA3Hash(data []byte) []byte {
	h := sha3.New256()
	h.Write(data)
	return h.Sum(nil)
}

func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}
