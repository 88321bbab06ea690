package account

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TopiaNetwork/flowlink/chain"
)

func TestDeviceRequestJson(t *testing.T) {
	raw := `{"account_key":{"public_key":"0xabc","sign_algo":2,"hash_algo":3,"weight":1000},"device_info":{"device_id":"d1","name":"Pixel","type":"1","user_agent":"FRW/Android"}}`

	var req DeviceRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "0xabc", req.AccountKey.PublicKey)
	assert.Equal(t, 1000, req.AccountKey.Weight)
	assert.Equal(t, "Pixel", req.DeviceInfo.Name)
	assert.NoError(t, req.Validate())

	req.AccountKey.PublicKey = ""
	assert.Error(t, req.Validate())
}

func TestProviderMockAddress(t *testing.T) {
	pm := NewProviderMock("0x01", "")

	addr, err := pm.Address(chain.NativeTestnet)
	require.NoError(t, err)
	assert.Equal(t, "0x01", addr)

	_, err = pm.Address(chain.EVMMainnet)
	assert.True(t, errors.Is(err, ErrNoAccount))
}
