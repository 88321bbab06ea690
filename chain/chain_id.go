package chain

import (
	"fmt"
	"strings"
)

type ChainID byte

const (
	Unknown ChainID = iota
	NativeMainnet
	NativeTestnet
	NativePreviewnet
	EVMMainnet
	EVMTestnet
	EVMPreviewnet
)

const (
	FamilyNative = "flow"
	FamilyEVM    = "eip155"
)

var nativeReferences = map[string]ChainID{
	"mainnet":    NativeMainnet,
	"testnet":    NativeTestnet,
	"previewnet": NativePreviewnet,
}

var evmReferences = map[string]ChainID{
	"747": EVMMainnet,
	"545": EVMTestnet,
	"646": EVMPreviewnet,
}

func (c ChainID) String() string {
	switch c {
	case NativeMainnet:
		return "mainnet"
	case NativeTestnet:
		return "testnet"
	case NativePreviewnet:
		return "previewnet"
	case EVMMainnet:
		return "evm-mainnet"
	case EVMTestnet:
		return "evm-testnet"
	case EVMPreviewnet:
		return "evm-previewnet"
	}
	return "unknown"
}

func (c ChainID) IsEVM() bool {
	return c == EVMMainnet || c == EVMTestnet || c == EVMPreviewnet
}

func (c ChainID) IsNative() bool {
	return c == NativeMainnet || c == NativeTestnet || c == NativePreviewnet
}

func (c ChainID) Family() string {
	switch {
	case c.IsNative():
		return FamilyNative
	case c.IsEVM():
		return FamilyEVM
	}
	return ""
}

// Reference is the CAIP-2 reference part: a network name for the native family, a decimal chain id for EVM.
func (c ChainID) Reference() string {
	for ref, id := range nativeReferences {
		if id == c {
			return ref
		}
	}
	for ref, id := range evmReferences {
		if id == c {
			return ref
		}
	}
	return ""
}

func (c ChainID) CAIP2() string {
	if c == Unknown {
		return ""
	}
	return c.Family() + ":" + c.Reference()
}

// Native maps an EVM variant to the native network it runs on.
func (c ChainID) Native() ChainID {
	switch c {
	case EVMMainnet:
		return NativeMainnet
	case EVMTestnet:
		return NativeTestnet
	case EVMPreviewnet:
		return NativePreviewnet
	}
	return c
}

// EVM maps a native network to its EVM variant.
func (c ChainID) EVM() ChainID {
	switch c {
	case NativeMainnet:
		return EVMMainnet
	case NativeTestnet:
		return EVMTestnet
	case NativePreviewnet:
		return EVMPreviewnet
	}
	return c
}

func ParseNativeReference(ref string) ChainID {
	if id, ok := nativeReferences[strings.ToLower(strings.TrimSpace(ref))]; ok {
		return id
	}
	return Unknown
}

func ParseEVMReference(ref string) ChainID {
	if id, ok := evmReferences[strings.TrimSpace(ref)]; ok {
		return id
	}
	return Unknown
}

func ParseName(name string) ChainID {
	for id := NativeMainnet; id <= EVMPreviewnet; id++ {
		if id.String() == name {
			return id
		}
	}
	return Unknown
}

// SplitCAIP2 splits "family:reference". A bare family tag yields an empty reference.
func SplitCAIP2(id string) (family string, reference string) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func FromCAIP2(id string) ChainID {
	family, ref := SplitCAIP2(id)
	switch family {
	case FamilyNative:
		return ParseNativeReference(ref)
	case FamilyEVM:
		return ParseEVMReference(ref)
	}
	return Unknown
}

// AccountID renders a CAIP-10 account identifier.
func AccountID(c ChainID, address string) string {
	return fmt.Sprintf("%s:%s", c.CAIP2(), address)
}

// ParseAccountID splits a CAIP-10 account into chain and address.
func ParseAccountID(account string) (ChainID, string, error) {
	idx := strings.LastIndex(account, ":")
	if idx <= 0 || idx == len(account)-1 {
		return Unknown, "", fmt.Errorf("invalid account id %q", account)
	}
	c := FromCAIP2(account[:idx])
	if c == Unknown {
		return Unknown, "", fmt.Errorf("unknown chain in account id %q", account)
	}
	return c, account[idx+1:], nil
}
