package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
)

var ErrNoEVMBridge = errors.New("no EVM bridge attached to this wallet")

// staticAccounts exposes one key: its native account and the EVM address of its public key.
type staticAccounts struct {
	native string
	evm    string
}

func newStaticAccounts(native string, evm common.Address) *staticAccounts {
	return &staticAccounts{native: native, evm: evm.Hex()}
}

func (a *staticAccounts) Address(c chain.ChainID) (string, error) {
	switch {
	case c.IsNative():
		return a.native, nil
	case c.IsEVM():
		return a.evm, nil
	}
	return "", fmt.Errorf("%w on %s", account.ErrNoAccount, c)
}

func (a *staticAccounts) Profile() (*account.Profile, error) {
	return &account.Profile{Name: "local", Address: a.native}, nil
}

// localEVM accepts asset watches and refuses everything needing a bridge.
type localEVM struct {
	log tplog.Logger
}

var _ handler.EVMProvider = (*localEVM)(nil)

func (e *localEVM) SendTransaction(ctx context.Context, c chain.ChainID, tx json.RawMessage) (string, error) {
	return "", ErrNoEVMBridge
}

func (e *localEVM) SignTypedData(ctx context.Context, c chain.ChainID, address string, typedData json.RawMessage) (string, error) {
	return "", ErrNoEVMBridge
}

func (e *localEVM) WatchAsset(ctx context.Context, c chain.ChainID, asset json.RawMessage) (bool, error) {
	e.log.Infof("watching asset on %s: %s", c, string(asset))
	return true, nil
}

type loggingDevices struct {
	log tplog.Logger
}

func (d *loggingDevices) AddDeviceKey(ctx context.Context, req *account.DeviceRequest) error {
	d.log.Infof("device key requested by %s", req.DeviceInfo.Name)
	return nil
}
