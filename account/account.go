package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TopiaNetwork/flowlink/chain"
)

var ErrNoAccount = errors.New("no active account")

// Profile is the public part of the active account shared with a syncing device.
type Profile struct {
	Avatar  string `json:"avatar"`
	Name    string `json:"name"`
	Address string `json:"address"`
	UserID  string `json:"userId"`
}

// Provider resolves the wallet's active account.
type Provider interface {
	// Address returns the account exposed on c: the native address on native chains,
	// the COA address on EVM chains.
	Address(c chain.ChainID) (string, error)

	Profile() (*Profile, error)
}

type AccountKey struct {
	PublicKey string `json:"public_key"`
	SignAlgo  int    `json:"sign_algo"`
	HashAlgo  int    `json:"hash_algo"`
	Weight    int    `json:"weight"`
}

type DeviceInfo struct {
	DeviceID  string `json:"device_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	UserAgent string `json:"user_agent"`
	IP        string `json:"ip,omitempty"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
}

// DeviceRequest is pushed by a new device asking to have its key added to the account.
type DeviceRequest struct {
	AccountKey AccountKey `json:"account_key"`
	DeviceInfo DeviceInfo `json:"device_info"`
}

func (r *DeviceRequest) Validate() error {
	if r.AccountKey.PublicKey == "" {
		return errors.New("device request without public key")
	}
	if r.DeviceInfo.DeviceID == "" {
		return errors.New("device request without device id")
	}
	return nil
}

// DeviceKeys provisions keys of newly synced devices on the account.
type DeviceKeys interface {
	AddDeviceKey(ctx context.Context, req *DeviceRequest) error
}

const (
	SyncStatus_Success = "success"
	SyncStatus_Failed  = "failed"
)

// SyncResponse is the envelope device sync replies travel in.
type SyncResponse struct {
	Method  string          `json:"method"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func NewSyncResponse(method string, data interface{}) (*SyncResponse, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &SyncResponse{Method: method, Status: SyncStatus_Success, Data: raw}, nil
}

// DecodeProfile extracts the profile an account info reply carries.
func (r *SyncResponse) DecodeProfile() (*Profile, error) {
	if r.Status != SyncStatus_Success {
		return nil, fmt.Errorf("sync %s %s: %s", r.Method, r.Status, r.Message)
	}
	var profile Profile
	if err := json.Unmarshal(r.Data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
