package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/TopiaNetwork/flowlink/chain"
)

type ProviderMock struct {
	NativeAddress string
	EVMAddress    string
	Prof          *Profile
}

func NewProviderMock(native string, evm string) *ProviderMock {
	return &ProviderMock{
		NativeAddress: native,
		EVMAddress:    evm,
		Prof: &Profile{
			Avatar:  "https://avatar.example/u.png",
			Name:    "tester",
			Address: native,
			UserID:  "user-1",
		},
	}
}

func (pm *ProviderMock) Address(c chain.ChainID) (string, error) {
	switch {
	case c.IsNative() && pm.NativeAddress != "":
		return pm.NativeAddress, nil
	case c.IsEVM() && pm.EVMAddress != "":
		return pm.EVMAddress, nil
	}
	return "", fmt.Errorf("%w on %s", ErrNoAccount, c)
}

func (pm *ProviderMock) Profile() (*Profile, error) {
	if pm.Prof == nil {
		return nil, ErrNoAccount
	}
	return pm.Prof, nil
}

type DeviceKeysMock struct {
	sync  sync.Mutex
	Err   error
	Added []*DeviceRequest
}

func (dm *DeviceKeysMock) AddDeviceKey(ctx context.Context, req *DeviceRequest) error {
	dm.sync.Lock()
	defer dm.sync.Unlock()

	if dm.Err != nil {
		return dm.Err
	}
	dm.Added = append(dm.Added, req)
	return nil
}

func (dm *DeviceKeysMock) AddedRequests() []*DeviceRequest {
	dm.sync.Lock()
	defer dm.sync.Unlock()

	return append([]*DeviceRequest(nil), dm.Added...)
}
