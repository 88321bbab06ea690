package request

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	"github.com/TopiaNetwork/flowlink/crypt"
	"github.com/TopiaNetwork/flowlink/crypt/secp256"
	tpcrtypes "github.com/TopiaNetwork/flowlink/crypt/types"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/session"
	"github.com/TopiaNetwork/flowlink/transport"
)

const (
	testNativeAddr = "0x01cf0e2f2f715450"
	testEVMAddr    = "0x000000000000000000000002b87c966bc00bc2c4"
	testTopic      = "session-1"
	testRedirect   = "demo://wc"
)

type fixture struct {
	pipeline  *Pipeline
	transport *transport.TransportMock
	store     *session.Store
	surface   *approval.SurfaceMock
	notifier  *approval.NotifierMock
	devices   *account.DeviceKeysMock
	config    *tpconfig.RequestConfiguration
}

func newFixture(t *testing.T, signer crypt.Signer, evm handler.EVMProvider) *fixture {
	log := tplog.CreateNopLogger()
	tm := transport.NewTransportMock()
	tm.SetSessions(&transport.Session{
		Topic:        testTopic,
		PairingTopic: "pairing-1",
		Peer: transport.Metadata{
			Name:     "Demo",
			URL:      "https://demo.app",
			Redirect: &transport.Redirect{Native: testRedirect},
		},
		Namespaces: transport.Namespaces{
			"flow": {Chains: []string{"flow:mainnet"}, Accounts: []string{"flow:mainnet:" + testNativeAddr}},
		},
	})
	store := session.NewStore(log, tm)
	require.NoError(t, store.Reload(context.Background()))

	surface := approval.NewSurfaceMock()
	notifier := &approval.NotifierMock{}
	devices := &account.DeviceKeysMock{}
	config := tpconfig.DefRequestConfiguration()
	registry := handler.NewRegistry(handler.NewNativeHandler(), handler.NewEVMHandler(log, evm, surface))

	p, err := NewPipeline(log, config, registry, tm, store, signer, account.NewProviderMock(testNativeAddr, testEVMAddr), devices, surface, notifier)
	require.NoError(t, err)
	p.redirect = func(url string) {
		notifier.Redirect(url)
	}

	return &fixture{
		pipeline:  p,
		transport: tm,
		store:     store,
		surface:   surface,
		notifier:  notifier,
		devices:   devices,
		config:    config,
	}
}

func newLocalSigner(t *testing.T) *secp256.LocalSigner {
	pri, _, err := secp256.GeneratePriPubKey()
	require.NoError(t, err)
	signer, err := secp256.New(tplog.CreateNopLogger(), testNativeAddr, 1, pri)
	require.NoError(t, err)
	return signer
}

func newRequest(id int64, method string, chainID string, params ...interface{}) *transport.Request {
	raw, _ := json.Marshal(params)
	return &transport.Request{Topic: testTopic, ID: id, Method: method, ChainID: chainID, Params: raw}
}

func (f *fixture) onlyResponse(t *testing.T) *transport.Response {
	responses := f.transport.ResponseList()
	require.Len(t, responses, 1)
	return responses[0]
}

func TestScenarioCPayerOnlyAuthorizationAutoApproves(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	message := []byte("payer envelope")
	signer := crypt.NewMockSigner(ctrl)
	signer.EXPECT().SignForRole(gomock.Any(), tpcrtypes.SignRole_Payer, message).Return(tpcrtypes.Signature{0xaa, 0xbb}, nil)

	f := newFixture(t, signer, nil)
	f.config.PayerAddress = "0xfeedfeedfeedfeed"
	f.config.PayerKeyIndex = 3

	encoded, err := EncodePayload(&Signable{
		Message: hex.EncodeToString(message),
		Addr:    "0xfeedfeedfeedfeed",
		Roles:   Roles{Payer: true},
		Cadence: "transaction {}",
	})
	require.NoError(t, err)

	state := f.pipeline.Handle(context.Background(), newRequest(1, handler.MethodAuthz, "flow:mainnet", encoded))
	assert.Equal(t, State_Replied, state)
	assert.Equal(t, 0, f.surface.PromptCount())

	resp := f.onlyResponse(t)
	require.False(t, resp.IsError())
	result := gjson.ParseBytes(resp.Result)
	assert.Equal(t, statusApproved, result.Get("status").String())
	assert.Equal(t, "0xfeedfeedfeedfeed", result.Get("data.addr").String())
	assert.Equal(t, int64(3), result.Get("data.keyId").Int())
	assert.Equal(t, "aabb", result.Get("data.signature").String())

	assert.Equal(t, []string{testRedirect}, f.notifier.RedirectList())
}

func TestAuthorizationPromptsWithScript(t *testing.T) {
	signer := newLocalSigner(t)
	f := newFixture(t, signer, nil)

	message := []byte("envelope")
	state := f.pipeline.Handle(context.Background(), newRequest(2, handler.MethodAuthz, "flow:mainnet", map[string]interface{}{
		"message": hex.EncodeToString(message),
		"roles":   map[string]bool{"proposer": true, "authorizer": true, "payer": true},
		"cadence": "transaction { prepare(acct: AuthAccount) {} }",
		"args":    []interface{}{map[string]string{"type": "Address", "value": testNativeAddr}},
	}))
	assert.Equal(t, State_AwaitingApproval, state)

	require.Equal(t, 1, f.surface.PromptCount())
	prompt, ok := f.surface.Prompts()[0].(*approval.TransactionPrompt)
	require.True(t, ok)
	assert.Equal(t, "transaction { prepare(acct: AuthAccount) {} }", prompt.Script)
	require.Len(t, prompt.Arguments, 1)
	assert.Equal(t, "Address", gjson.GetBytes(prompt.Arguments[0], "type").String())

	require.NoError(t, f.surface.Decide(0, true))

	resp := f.onlyResponse(t)
	require.False(t, resp.IsError())
	sig, err := hex.DecodeString(gjson.GetBytes(resp.Result, "data.signature").String())
	require.NoError(t, err)
	assert.True(t, secp256.Verify(signer.PublicKey(), message, sig))
	assert.Equal(t, []approval.Prompt{prompt}, f.surface.Dismissed)
}

func TestScenarioDCompressedUserSignature(t *testing.T) {
	signer := newLocalSigner(t)
	f := newFixture(t, signer, nil)

	message := "Sign in to Demo"
	encoded, err := EncodePayload(&UserSignRequest{Message: hex.EncodeToString([]byte(message))})
	require.NoError(t, err)

	state := f.pipeline.Handle(context.Background(), newRequest(3, handler.MethodUserSign, "flow:mainnet", encoded))
	assert.Equal(t, State_AwaitingApproval, state)

	require.Equal(t, 1, f.surface.PromptCount())
	prompt, ok := f.surface.Prompts()[0].(*approval.MessagePrompt)
	require.True(t, ok)
	assert.Equal(t, message, prompt.Message)
	assert.Empty(t, f.transport.ResponseList())

	require.NoError(t, f.surface.Decide(0, true))

	resp := f.onlyResponse(t)
	require.False(t, resp.IsError())
	data := gjson.GetBytes(resp.Result, "data")
	assert.Equal(t, "CompositeSignature", data.Get("f_type").String())
	assert.Equal(t, testNativeAddr, data.Get("addr").String())
	assert.Equal(t, int64(1), data.Get("keyId").Int())

	sig, err := hex.DecodeString(data.Get("signature").String())
	require.NoError(t, err)
	assert.True(t, secp256.Verify(signer.PublicKey(), crypt.UserMessage([]byte(message)), sig))
}

func TestUserSignatureRawAndCompressedPromptAlike(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	req := &UserSignRequest{Message: hex.EncodeToString([]byte("same"))}
	encoded, err := EncodePayload(req)
	require.NoError(t, err)

	f.pipeline.Handle(context.Background(), newRequest(4, handler.MethodUserSign, "flow:mainnet", encoded))
	f.pipeline.Handle(context.Background(), &transport.Request{
		Topic:   "session-1",
		ID:      5,
		Method:  handler.MethodUserSign,
		ChainID: "flow:mainnet",
		Params:  json.RawMessage(`[{"message":"` + req.Message + `"}]`),
	})

	prompts := f.surface.Prompts()
	require.Len(t, prompts, 2)
	assert.Equal(t, prompts[0].(*approval.MessagePrompt).Message, prompts[1].(*approval.MessagePrompt).Message)
}

func TestScenarioEUnsupportedMethod(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	state := f.pipeline.Handle(context.Background(), newRequest(6, "eth_sign", "eip155:747", "0x00"))
	assert.Equal(t, State_Replied, state)
	assert.Equal(t, 0, f.surface.PromptCount())

	resp := f.onlyResponse(t)
	assert.Equal(t, transport.ReasonUnsupportedMethod, resp.Error)
	assert.Empty(t, f.notifier.RedirectList())
	assert.Empty(t, f.notifier.ToastList())
}

func TestScenarioFDuplicateDeliveryRepliesOnce(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	req := newRequest(7, handler.MethodUserSign, "flow:mainnet", `{"message":"00ff"}`)
	assert.Equal(t, State_AwaitingApproval, f.pipeline.Handle(context.Background(), req))
	assert.Equal(t, State_Ignored, f.pipeline.Handle(context.Background(), req))
	assert.Equal(t, 1, f.surface.PromptCount())

	require.NoError(t, f.surface.Decide(0, false))
	assert.Equal(t, State_Ignored, f.pipeline.Handle(context.Background(), req))

	resp := f.onlyResponse(t)
	assert.Equal(t, transport.ReasonUserRejected, resp.Error)
	assert.Equal(t, 1, f.surface.PromptCount())
}

func TestNewerRequestSupersedesPending(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(8, handler.MethodUserSign, "flow:mainnet", `{"message":"01"}`))
	f.pipeline.Handle(context.Background(), newRequest(9, handler.MethodUserSign, "flow:mainnet", `{"message":"02"}`))

	id, ok := f.pipeline.Current(testTopic)
	require.True(t, ok)
	assert.Equal(t, int64(9), id)

	responses := f.transport.ResponseList()
	require.Len(t, responses, 1)
	assert.Equal(t, int64(8), responses[0].ID)
	assert.Equal(t, transport.ReasonSuperseded, responses[0].Error)
	require.Len(t, f.surface.Dismissed, 1)

	// the stale prompt answering late has no effect
	require.NoError(t, f.surface.Decide(0, true))
	assert.Len(t, f.transport.ResponseList(), 1)

	require.NoError(t, f.surface.Decide(1, true))
	assert.Len(t, f.transport.ResponseList(), 2)
	_, ok = f.pipeline.Current(testTopic)
	assert.False(t, ok)
	assert.Equal(t, 0, f.pipeline.InFlight())
}

func TestRequestForUnknownSessionIsDeclined(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	req := newRequest(10, handler.MethodAuthn, "flow:mainnet")
	req.Topic = "gone"
	assert.Equal(t, State_Replied, f.pipeline.Handle(context.Background(), req))
	assert.Equal(t, transport.ReasonSessionGone, f.onlyResponse(t).Error)
}

func TestSessionDeletedWhileAwaitingApproval(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(11, handler.MethodUserSign, "flow:mainnet", `{"message":"01"}`))
	f.transport.SetSessions()
	require.NoError(t, f.store.Reload(context.Background()))
	f.pipeline.SessionDeleted(testTopic)

	require.NoError(t, f.surface.Decide(0, true))
	assert.Equal(t, transport.ReasonSessionGone, f.onlyResponse(t).Error)
}

func TestAuthnWithAccountProof(t *testing.T) {
	signer := newLocalSigner(t)
	f := newFixture(t, signer, nil)
	f.config.PayerAddress = "0xfeedfeedfeedfeed"

	nonce := "75f8587e5bd5f9dcc9909d0dae1f0ac5814458b2ae129620502cb936fde7120a"
	state := f.pipeline.Handle(context.Background(), newRequest(12, handler.MethodAuthn, "flow:mainnet", map[string]interface{}{
		"data": map[string]string{"nonce": nonce, "appIdentifier": "AWESOME-APP-ID"},
	}))
	assert.Equal(t, State_Replied, state)
	assert.Equal(t, 0, f.surface.PromptCount())

	resp := f.onlyResponse(t)
	require.False(t, resp.IsError())
	data := gjson.GetBytes(resp.Result, "data")
	assert.Equal(t, testNativeAddr, data.Get("addr").String())

	var types []string
	for _, s := range data.Get("services").Array() {
		types = append(types, s.Get("type").String())
	}
	assert.Equal(t, []string{"authn", "authz", "pre-authz", "user-signature", "account-proof"}, types)

	proof := data.Get("services.4.data")
	assert.Equal(t, nonce, proof.Get("nonce").String())
	sig, err := hex.DecodeString(proof.Get("signatures.0.signature").String())
	require.NoError(t, err)
	message, err := crypt.AccountProofMessage("AWESOME-APP-ID", testNativeAddr, nonce)
	require.NoError(t, err)
	assert.True(t, secp256.Verify(signer.PublicKey(), message, sig))
}

func TestAuthnWithoutNonce(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(13, handler.MethodAuthn, "flow:mainnet"))

	resp := f.onlyResponse(t)
	require.False(t, resp.IsError())
	services := gjson.GetBytes(resp.Result, "data.services.#.type")
	assert.Equal(t, `["authn","authz","user-signature"]`, services.Raw)
}

func TestPreAuthzAdvertisesPayer(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)
	f.config.PayerAddress = "feedfeedfeedfeed"
	f.config.PayerKeyIndex = 4

	f.pipeline.Handle(context.Background(), newRequest(14, handler.MethodPreAuthz, ""))

	data := gjson.GetBytes(f.onlyResponse(t).Result, "data")
	assert.Equal(t, testNativeAddr, data.Get("proposer.identity.address").String())
	assert.Equal(t, "0xfeedfeedfeedfeed", data.Get("payer.0.identity.address").String())
	assert.Equal(t, int64(4), data.Get("payer.0.identity.keyId").Int())
	assert.Equal(t, testNativeAddr, data.Get("authorization.0.identity.address").String())
}

func TestPersonalSignReturnsOwnershipProof(t *testing.T) {
	signer := newLocalSigner(t)
	f := newFixture(t, signer, nil)
	f.config.CapabilityPath = "evm"

	message := []byte("hello evm")
	state := f.pipeline.Handle(context.Background(), newRequest(15, handler.MethodPersonalSign, "eip155:747", "0x"+hex.EncodeToString(message), testEVMAddr))
	assert.Equal(t, State_AwaitingApproval, state)
	_, ok := f.surface.Prompts()[0].(*approval.MessagePrompt)
	require.True(t, ok)

	require.NoError(t, f.surface.Decide(0, true))

	var encoded string
	require.NoError(t, json.Unmarshal(f.onlyResponse(t).Result, &encoded))
	proof, err := crypt.DecodeOwnershipProof(encoded)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, proof.KeyIndices)
	assert.Equal(t, "evm", proof.CapabilityPath)
	require.Len(t, proof.Signatures, 1)
	assert.True(t, secp256.Verify(signer.PublicKey(), crypt.PersonalMessage(message), proof.Signatures[0]))
}

func TestSigningFailureDeclinesAndToasts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	signer := crypt.NewMockSigner(ctrl)
	signer.EXPECT().Sign(gomock.Any(), gomock.Any()).Return(nil, errors.New("key locked"))

	f := newFixture(t, signer, nil)
	f.pipeline.Handle(context.Background(), newRequest(16, handler.MethodUserSign, "flow:mainnet", `{"message":"0a"}`))
	require.NoError(t, f.surface.Decide(0, true))

	assert.Equal(t, transport.ReasonSigningFailure, f.onlyResponse(t).Error)
	assert.Equal(t, []string{ToastSignFailed}, f.notifier.ToastList())
}

func TestDecodeFailureDeclines(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(17, handler.MethodAuthz, "flow:mainnet", "not json"))
	assert.Equal(t, transport.ReasonDecodeFailure, f.onlyResponse(t).Error)
	assert.Equal(t, 0, f.surface.PromptCount())
}

func TestReplyTransportFailureToasts(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)
	f.transport.RespondErr = errors.New("relay down")

	req := newRequest(18, handler.MethodPreAuthz, "flow:mainnet")
	f.pipeline.Handle(context.Background(), req)
	assert.Equal(t, []string{ToastReplyFailed}, f.notifier.ToastList())
	assert.Empty(t, f.notifier.RedirectList())

	// a re-delivery after a failed reply is handled again
	f.transport.RespondErr = nil
	assert.Equal(t, State_Replied, f.pipeline.Handle(context.Background(), req))
	assert.Len(t, f.transport.ResponseList(), 1)
}

func TestAccountInfoAnswersProfile(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(19, handler.MethodAccountInfo, "flow:mainnet"))

	var envelope account.SyncResponse
	require.NoError(t, json.Unmarshal(f.onlyResponse(t).Result, &envelope))
	profile, err := envelope.DecodeProfile()
	require.NoError(t, err)
	assert.Equal(t, testNativeAddr, profile.Address)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, 0, f.surface.PromptCount())
}

func TestAddDeviceConfirmed(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	device := &account.DeviceRequest{
		AccountKey: account.AccountKey{PublicKey: "04ab", SignAlgo: 2, HashAlgo: 3, Weight: 1000},
		DeviceInfo: account.DeviceInfo{DeviceID: "dev-1", Name: "Pixel", City: "Berlin"},
	}
	f.pipeline.Handle(context.Background(), newRequest(20, handler.MethodAddDeviceKey, "flow:mainnet", device))

	prompt, ok := f.surface.Prompts()[0].(*approval.DevicePrompt)
	require.True(t, ok)
	assert.Equal(t, "Berlin", prompt.Device.DeviceInfo.City)

	require.NoError(t, f.surface.Decide(0, true))
	resp := f.onlyResponse(t)
	assert.Equal(t, "{}", string(resp.Result))
	require.Len(t, f.devices.AddedRequests(), 1)
	assert.Equal(t, "dev-1", f.devices.AddedRequests()[0].DeviceInfo.DeviceID)
}

func TestAddDeviceRejectsIncompleteDescriptor(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(21, handler.MethodAddDeviceKey, "flow:mainnet", `{"device_info":{"device_id":"x"}}`))
	assert.Equal(t, transport.ReasonDecodeFailure, f.onlyResponse(t).Error)
	assert.Empty(t, f.devices.AddedRequests())
}

func TestDelegatedEVMRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := handler.NewMockEVMProvider(ctrl)
	provider.EXPECT().SendTransaction(gomock.Any(), gomock.Any(), gomock.Any()).Return("0xhash", nil)

	f := newFixture(t, newLocalSigner(t), provider)
	state := f.pipeline.Handle(context.Background(), newRequest(22, handler.MethodSendTx, "eip155:747", map[string]string{"to": testEVMAddr, "value": "0x1"}))
	assert.Equal(t, State_AwaitingApproval, state)

	_, ok := f.surface.Prompts()[0].(*approval.EVMPrompt)
	require.True(t, ok)
	require.NoError(t, f.surface.Decide(0, true))

	assert.Equal(t, `"0xhash"`, string(f.onlyResponse(t).Result))
	assert.Equal(t, []string{testRedirect}, f.notifier.RedirectList())
}

func TestDelegatedMethodOnNativeChain(t *testing.T) {
	f := newFixture(t, newLocalSigner(t), nil)

	f.pipeline.Handle(context.Background(), newRequest(23, handler.MethodWatchAsset, "flow:mainnet", `{}`))
	assert.Equal(t, transport.ReasonUnsupportedChains, f.onlyResponse(t).Error)
}

func TestSupersededDelegatedRequestNeverReachesBridge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no SendTransaction expectation: any bridge call fails the test
	provider := handler.NewMockEVMProvider(ctrl)
	f := newFixture(t, newLocalSigner(t), provider)

	f.pipeline.Handle(context.Background(), newRequest(30, handler.MethodSendTx, "eip155:747", map[string]string{"to": testEVMAddr, "value": "0x1"}))
	f.pipeline.Handle(context.Background(), newRequest(31, handler.MethodUserSign, "flow:mainnet", `{"message":"01"}`))

	responses := f.transport.ResponseList()
	require.Len(t, responses, 1)
	assert.Equal(t, int64(30), responses[0].ID)
	assert.Equal(t, transport.ReasonSuperseded, responses[0].Error)
	require.Len(t, f.surface.Dismissed, 1)
	_, ok := f.surface.Dismissed[0].(*approval.EVMPrompt)
	assert.True(t, ok)

	require.NoError(t, f.surface.Decide(0, true))
	assert.Len(t, f.transport.ResponseList(), 1)
}

func TestDelegatedRequestDeclinesAfterSessionDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := handler.NewMockEVMProvider(ctrl)
	f := newFixture(t, newLocalSigner(t), provider)

	f.pipeline.Handle(context.Background(), newRequest(40, handler.MethodSendTx, "eip155:747", map[string]string{"to": testEVMAddr, "value": "0x1"}))
	f.transport.SetSessions()
	require.NoError(t, f.store.Reload(context.Background()))
	f.pipeline.SessionDeleted(testTopic)

	require.NoError(t, f.surface.Decide(0, true))
	resp := f.onlyResponse(t)
	assert.Equal(t, transport.ReasonSessionGone, resp.Error)
	assert.Empty(t, resp.Result)
}

func TestDelegatedBridgeFailureDeclines(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := handler.NewMockEVMProvider(ctrl)
	provider.EXPECT().WatchAsset(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("bridge down"))

	f := newFixture(t, newLocalSigner(t), provider)
	f.pipeline.Handle(context.Background(), newRequest(41, handler.MethodWatchAsset, "eip155:747", map[string]interface{}{"type": "ERC20", "options": map[string]string{"address": testEVMAddr}}))
	require.NoError(t, f.surface.Decide(0, true))

	assert.Equal(t, transport.ReasonSigningFailure, f.onlyResponse(t).Error)
	assert.Equal(t, []string{ToastSignFailed}, f.notifier.ToastList())
}
