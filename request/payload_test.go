package request

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	signable := &Signable{
		FType:   "Signable",
		FVsn:    fclVersion,
		Message: "464c4f572d56302e302d7472616e73616374696f6e",
		Addr:    "01cf0e2f2f715450",
		KeyID:   2,
		Roles:   Roles{Payer: true},
		Cadence: "transaction { execute { log(\"hi\") } }",
		Args:    []json.RawMessage{json.RawMessage(`{"type":"UFix64","value":"1.0"}`)},
	}

	raw, err := json.Marshal(signable)
	require.NoError(t, err)
	encoded, err := EncodePayload(signable)
	require.NoError(t, err)
	assert.NotEqual(t, string(raw), encoded)

	var fromRaw, fromEncoded Signable
	require.NoError(t, DecodePayload(string(raw), &fromRaw))
	require.NoError(t, DecodePayload(encoded, &fromEncoded))
	assert.Equal(t, fromRaw, fromEncoded)
	assert.Equal(t, *signable, fromEncoded)
}

func TestDecodePayloadPlainBase64IsParsedAsJSON(t *testing.T) {
	// base64 of a non gzip document is not unwrapped
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"message":"00"}`))

	var req UserSignRequest
	err := DecodePayload(encoded, &req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecodePayloadCorruptGzip(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte{0x1f, 0x8b, 0x00, 0x01})

	var req UserSignRequest
	assert.True(t, errors.Is(DecodePayload(encoded, &req), ErrDecode))
}

func TestFirstParam(t *testing.T) {
	p, err := firstParam(json.RawMessage(`["abc", "0x1"]`))
	require.NoError(t, err)
	assert.Equal(t, "abc", p)

	p, err = firstParam(json.RawMessage(`"abc"`))
	require.NoError(t, err)
	assert.Equal(t, "abc", p)

	p, err = firstParam(json.RawMessage(`{"message":"00"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"message":"00"}`, p)

	p, err = firstParam(json.RawMessage(`[{"message":"00"}]`))
	require.NoError(t, err)
	assert.Equal(t, `{"message":"00"}`, p)

	_, err = firstParam(json.RawMessage(`[]`))
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestClassifyIsTotal(t *testing.T) {
	assert.Equal(t, Category_Authorization, Classify("flow_authz"))
	assert.Equal(t, Category_EVMDelegated, Classify("eth_signTypedData_v4"))
	assert.Equal(t, Category_AddDeviceInfo, Classify("frw_add_device_key"))
	assert.Equal(t, Category_Unsupported, Classify("eth_sign"))
	assert.Equal(t, Category_Unsupported, Classify(""))
}
