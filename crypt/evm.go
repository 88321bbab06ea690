package crypt

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/TopiaNetwork/flowlink/codec"
)

const DefaultCapabilityPath = "evm"

// OwnershipProof proves that the native account at Address controls the COA used for EVM signing.
type OwnershipProof struct {
	KeyIndices     []uint64
	Address        []byte
	CapabilityPath string
	Signatures     [][]byte
}

func (p *OwnershipProof) Encode() (string, error) {
	data, err := codec.CreateMarshaler(codec.CodecType_RLP).Marshal(p)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

func DecodeOwnershipProof(encoded string) (*OwnershipProof, error) {
	data, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, err
	}
	var proof OwnershipProof
	if err = codec.CreateMarshaler(codec.CodecType_RLP).Unmarshal(data, &proof); err != nil {
		return nil, err
	}
	return &proof, nil
}

// PersonalMessage applies the EIP-191 personal message hash and prefixes the user domain tag.
func PersonalMessage(message []byte) []byte {
	return UserMessage(accounts.TextHash(message))
}

// SignPersonalMessage signs message for personal_sign and wraps the result into an encoded OwnershipProof.
func SignPersonalMessage(ctx context.Context, signer Signer, capabilityPath string, message []byte) (string, error) {
	sig, err := signer.Sign(ctx, PersonalMessage(message))
	if err != nil {
		return "", err
	}
	if len(sig) == 0 {
		return "", fmt.Errorf("empty signature")
	}

	addr, err := DecodeHex(signer.CurrentAddress())
	if err != nil {
		return "", fmt.Errorf("invalid signer address: %w", err)
	}

	proof := &OwnershipProof{
		KeyIndices:     []uint64{uint64(signer.CurrentKeyIndex())},
		Address:        addr,
		CapabilityPath: capabilityPath,
		Signatures:     [][]byte{sig},
	}
	return proof.Encode()
}
