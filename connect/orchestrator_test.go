package connect

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AsynkronIT/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	"github.com/TopiaNetwork/flowlink/crypt/secp256"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	tptime "github.com/TopiaNetwork/flowlink/time"
	"github.com/TopiaNetwork/flowlink/transport"
)

const (
	testNativeAddr = "0x01cf0e2f2f715450"
	testEVMAddr    = "0x000000000000000000000002b87c966bc00bc2c4"
	waitFor        = 3 * time.Second
	tickEvery      = 10 * time.Millisecond
)

type syncSink struct {
	profiles chan *account.Profile
}

func (s *syncSink) ShowProfile(profile *account.Profile)      { s.profiles <- profile }
func (s *syncSink) DeviceAdded(device *account.DeviceRequest) {}
func (s *syncSink) SyncFailed(err error)                      {}

type fixture struct {
	orchestrator *Orchestrator
	transport    *transport.TransportMock
	surface      *approval.SurfaceMock
	notifier     *approval.NotifierMock
	timerMng     *tptime.ManualTimerManager
	sink         *syncSink
}

func newFixture(t *testing.T, name string, surface *approval.SurfaceMock) *fixture {
	log := tplog.CreateNopLogger()
	pri, _, err := secp256.GeneratePriPubKey()
	require.NoError(t, err)
	signer, err := secp256.New(log, testNativeAddr, 0, pri)
	require.NoError(t, err)

	tm := transport.NewTransportMock()
	notifier := &approval.NotifierMock{}
	timerMng := tptime.NewManualTimerManager(log, name, time.Second)
	sink := &syncSink{profiles: make(chan *account.Profile, 1)}

	o, err := NewOrchestrator(tplogcmm.InfoLevel, log, name, actor.NewActorSystem(), tpconfig.DefConfiguration(), &Collaborators{
		Transport: tm,
		Signer:    signer,
		Accounts:  account.NewProviderMock(testNativeAddr, testEVMAddr),
		Devices:   &account.DeviceKeysMock{},
		Network:   chain.NewNetwork(chain.NativeMainnet),
		Surface:   surface,
		Notifier:  notifier,
		TimerMng:  timerMng,
		SyncSink:  sink,
	})
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(func() {
		assert.NoError(t, o.Stop())
	})

	return &fixture{orchestrator: o, transport: tm, surface: surface, notifier: notifier, timerMng: timerMng, sink: sink}
}

func TestStartTwice(t *testing.T) {
	f := newFixture(t, "orchestrator-twice", approval.NewSurfaceMock())
	assert.ErrorIs(t, f.orchestrator.Start(context.Background()), ErrStarted)
}

func TestProposalThenRequestEndToEnd(t *testing.T) {
	f := newFixture(t, "orchestrator-e2e", approval.NewAutoSurfaceMock(true))

	f.transport.Emit(&transport.Event{
		Kind: transport.EventKind_Proposal,
		Proposal: &transport.Proposal{
			ID:           1,
			PairingTopic: "pairing-1",
			Proposer:     transport.Metadata{Name: "Demo", URL: "https://demo.app"},
			RequiredNamespaces: transport.Namespaces{
				"flow": {Chains: []string{"flow:mainnet"}, Methods: []string{handler.MethodAuthn}, Events: []string{}},
			},
		},
	})
	require.Eventually(t, func() bool { return len(f.transport.ApprovedCalls()) == 1 }, waitFor, tickEvery)

	f.transport.SetSessions(&transport.Session{
		Topic:        "session-1",
		PairingTopic: "pairing-1",
		Peer:         transport.Metadata{Name: "Demo"},
		Namespaces:   f.transport.ApprovedCalls()[0].Namespaces,
	})
	f.transport.Emit(&transport.Event{Kind: transport.EventKind_SessionSettled, Topic: "session-1"})
	require.Eventually(t, func() bool { return len(f.orchestrator.Sessions()) == 1 }, waitFor, tickEvery)

	params, _ := json.Marshal([]string{`{"message":"68656c6c6f"}`})
	f.transport.Emit(&transport.Event{
		Kind:    transport.EventKind_Request,
		Topic:   "session-1",
		Request: &transport.Request{Topic: "session-1", ID: 42, Method: handler.MethodUserSign, ChainID: "flow:mainnet", Params: params},
	})
	require.Eventually(t, func() bool { return len(f.transport.ResponseList()) == 1 }, waitFor, tickEvery)

	resp := f.transport.ResponseList()[0]
	assert.Equal(t, int64(42), resp.ID)
	assert.False(t, resp.IsError())
	assert.Equal(t, "APPROVED", gjson.GetBytes(resp.Result, "status").String())

	f.transport.SetSessions()
	f.transport.Emit(&transport.Event{Kind: transport.EventKind_SessionDeleted, Topic: "session-1"})
	require.Eventually(t, func() bool { return len(f.orchestrator.Sessions()) == 0 }, waitFor, tickEvery)
}

func TestObserveSessions(t *testing.T) {
	f := newFixture(t, "orchestrator-observe", approval.NewSurfaceMock())

	counts := make(chan int, 4)
	cancel := f.orchestrator.ObserveSessions(func(sessions []*transport.Session) {
		counts <- len(sessions)
	})
	defer cancel()
	assert.Equal(t, 0, <-counts)

	f.transport.SetSessions(&transport.Session{Topic: "s"})
	f.transport.Emit(&transport.Event{Kind: transport.EventKind_SessionExtended, Topic: "s"})

	select {
	case n := <-counts:
		assert.Equal(t, 1, n)
	case <-time.After(waitFor):
		t.Fatal("observer not notified")
	}

	require.NoError(t, f.orchestrator.ReloadSessions(context.Background()))
	assert.Len(t, f.orchestrator.Sessions(), 1)
	assert.Len(t, counts, 0)
}

func TestPendingRequestsAndOpen(t *testing.T) {
	f := newFixture(t, "orchestrator-pending", approval.NewSurfaceMock())

	f.transport.SetSessions(&transport.Session{Topic: "s", Peer: transport.Metadata{Name: "Demo"}})
	require.NoError(t, f.orchestrator.ReloadSessions(context.Background()))
	f.transport.SetPending(&transport.Request{Topic: "s", ID: 7, Method: handler.MethodUserSign, ChainID: "flow:mainnet", Params: json.RawMessage(`[{"message":"00"}]`)})

	f.orchestrator.Foreground(context.Background())
	assert.Empty(t, f.orchestrator.PendingRequests())

	f.orchestrator.SetAuthenticated(true)
	f.timerMng.Tick(1)
	require.Len(t, f.orchestrator.PendingRequests(), 1)

	assert.ErrorIs(t, f.orchestrator.OpenPending(context.Background(), 8), ErrNoPending)
	require.NoError(t, f.orchestrator.OpenPending(context.Background(), 7))
	require.Eventually(t, func() bool { return f.surface.PromptCount() == 1 }, waitFor, tickEvery)

	f.orchestrator.SetAuthenticated(false)
	assert.Empty(t, f.orchestrator.PendingRequests())
}

func TestHandleIncomingLink(t *testing.T) {
	f := newFixture(t, "orchestrator-link", approval.NewSurfaceMock())

	uri := "wc:abc@2?relay-protocol=irn&symKey=00ff"
	require.NoError(t, f.orchestrator.HandleIncomingLink(context.Background(), "flowlink://wc?uri=wc%3Aabc%402%3Frelay-protocol%3Dirn%26symKey%3D00ff"))
	assert.Equal(t, []string{uri}, f.transport.Paired)

	assert.Error(t, f.orchestrator.HandleIncomingLink(context.Background(), "https://unknown.example"))
}

func TestDisconnect(t *testing.T) {
	f := newFixture(t, "orchestrator-disconnect", approval.NewSurfaceMock())

	f.transport.SetSessions(&transport.Session{Topic: "a"}, &transport.Session{Topic: "b"})
	require.NoError(t, f.orchestrator.ReloadSessions(context.Background()))

	require.NoError(t, f.orchestrator.Disconnect(context.Background(), "a"))
	assert.Equal(t, []string{"a"}, f.transport.Disconnected)
	require.Len(t, f.orchestrator.Sessions(), 1)
	assert.Equal(t, "b", f.orchestrator.Sessions()[0].Topic)
}

func TestDeviceSyncOverEvents(t *testing.T) {
	f := newFixture(t, "orchestrator-sync", approval.NewSurfaceMock())
	f.transport.ConnectTopic = "sync-pairing"
	f.transport.ConnectURI = "wc:sync@2?relay-protocol=irn&symKey=01"

	uri, err := f.orchestrator.StartDeviceSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.transport.ConnectURI, uri)

	f.transport.Emit(&transport.Event{Kind: transport.EventKind_SessionSettled, Topic: "sync-session", Session: &transport.Session{Topic: "sync-session", PairingTopic: "sync-pairing"}})
	require.Eventually(t, func() bool { return len(f.transport.SentRequests()) == 1 }, waitFor, tickEvery)

	envelope, err := account.NewSyncResponse(handler.MethodAccountInfo, &account.Profile{Name: "alice"})
	require.NoError(t, err)
	result, err := json.Marshal(envelope)
	require.NoError(t, err)
	f.transport.Emit(&transport.Event{Kind: transport.EventKind_Response, Topic: "sync-session", Response: &transport.Response{Topic: "sync-session", ID: f.transport.SentRequests()[0].ID, Method: handler.MethodAccountInfo, Result: result}})

	select {
	case profile := <-f.sink.profiles:
		assert.Equal(t, "alice", profile.Name)
	case <-time.After(waitFor):
		t.Fatal("profile not delivered")
	}
}
