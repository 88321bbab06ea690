package approval

import (
	"encoding/json"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/transport"
)

type PromptKind byte

const (
	PromptKind_Unknown PromptKind = iota
	PromptKind_Session
	PromptKind_Transaction
	PromptKind_Message
	PromptKind_Device
	PromptKind_EVM
)

func (k PromptKind) String() string {
	switch k {
	case PromptKind_Session:
		return "session"
	case PromptKind_Transaction:
		return "transaction"
	case PromptKind_Message:
		return "message"
	case PromptKind_Device:
		return "device"
	case PromptKind_EVM:
		return "evm"
	}
	return "unknown"
}

// Prompt is a prepared descriptor the approval surface renders.
type Prompt interface {
	Kind() PromptKind
	PeerInfo() *transport.Metadata
}

type SessionPrompt struct {
	Peer    transport.Metadata
	Chain   chain.ChainID
	Address string
}

func (p *SessionPrompt) Kind() PromptKind              { return PromptKind_Session }
func (p *SessionPrompt) PeerInfo() *transport.Metadata { return &p.Peer }

type TransactionPrompt struct {
	Peer      transport.Metadata
	Chain     chain.ChainID
	Script    string
	Arguments []json.RawMessage
}

func (p *TransactionPrompt) Kind() PromptKind              { return PromptKind_Transaction }
func (p *TransactionPrompt) PeerInfo() *transport.Metadata { return &p.Peer }

type MessagePrompt struct {
	Peer    transport.Metadata
	Chain   chain.ChainID
	Method  string
	Message string
}

func (p *MessagePrompt) Kind() PromptKind              { return PromptKind_Message }
func (p *MessagePrompt) PeerInfo() *transport.Metadata { return &p.Peer }

type DevicePrompt struct {
	Peer   transport.Metadata
	Device account.DeviceRequest
}

func (p *DevicePrompt) Kind() PromptKind              { return PromptKind_Device }
func (p *DevicePrompt) PeerInfo() *transport.Metadata { return &p.Peer }

// EVMPrompt covers the EVM methods the EVM handler confirms itself.
type EVMPrompt struct {
	Peer   transport.Metadata
	Chain  chain.ChainID
	Method string
	Params json.RawMessage
}

func (p *EVMPrompt) Kind() PromptKind              { return PromptKind_EVM }
func (p *EVMPrompt) PeerInfo() *transport.Metadata { return &p.Peer }
