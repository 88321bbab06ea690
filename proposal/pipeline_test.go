package proposal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/handler"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/session"
	"github.com/TopiaNetwork/flowlink/transport"
)

const (
	testNativeAddr = "0x01cf0e2f2f715450"
	testEVMAddr    = "0x000000000000000000000002b87c966bc00bc2c4"
)

type fixture struct {
	pipeline  *Pipeline
	transport *transport.TransportMock
	store     *session.Store
	network   *chain.Network
	surface   *approval.SurfaceMock
	notifier  *approval.NotifierMock
}

func newFixture(active chain.ChainID) *fixture {
	log := tplog.CreateNopLogger()
	tm := transport.NewTransportMock()
	store := session.NewStore(log, tm)
	surface := approval.NewSurfaceMock()
	notifier := &approval.NotifierMock{}
	network := chain.NewNetwork(active)
	registry := handler.NewRegistry(handler.NewNativeHandler(), handler.NewEVMHandler(log, nil, surface))

	return &fixture{
		pipeline:  NewPipeline(log, registry, tm, store, network, account.NewProviderMock(testNativeAddr, testEVMAddr), surface, notifier),
		transport: tm,
		store:     store,
		network:   network,
		surface:   surface,
		notifier:  notifier,
	}
}

func (f *fixture) transportCalls() int {
	return len(f.transport.ApprovedCalls()) + len(f.transport.RejectedCalls())
}

func proposalFor(id uint64, key string, chains ...string) *transport.Proposal {
	return &transport.Proposal{
		ID:           id,
		PairingTopic: "pairing-1",
		Proposer:     transport.Metadata{Name: "Demo", URL: "https://demo.app", Icons: []string{"https://demo.app/i.png"}},
		RequiredNamespaces: transport.Namespaces{
			key: {Chains: chains, Methods: []string{handler.MethodAuthn, handler.MethodPersonalSign}, Events: []string{"chainChanged"}},
		},
	}
}

func TestScenarioANativeProposalPromptsThenApproves(t *testing.T) {
	f := newFixture(chain.NativeMainnet)
	f.transport.SetSessions(&transport.Session{Topic: "s1", PairingTopic: "pairing-1"})

	outcome := f.pipeline.Process(context.Background(), proposalFor(7, "flow", "flow:mainnet"))
	assert.Equal(t, Outcome_Prompted, outcome)
	require.Equal(t, 1, f.surface.PromptCount())
	assert.Equal(t, 0, f.transportCalls())

	prompt, ok := f.surface.Prompts()[0].(*approval.SessionPrompt)
	require.True(t, ok)
	assert.Equal(t, "Demo", prompt.Peer.Name)
	assert.Equal(t, chain.NativeMainnet, prompt.Chain)
	assert.Equal(t, testNativeAddr, prompt.Address)

	require.NoError(t, f.surface.Decide(0, true))

	approved := f.transport.ApprovedCalls()
	require.Len(t, approved, 1)
	assert.Equal(t, uint64(7), approved[0].ProposalID)
	assert.Equal(t, []string{"flow:mainnet:" + testNativeAddr}, approved[0].Namespaces["flow"].Accounts)
	assert.Empty(t, f.transport.RejectedCalls())
	assert.Len(t, f.store.Sessions(), 1)
	assert.Len(t, f.surface.Dismissed, 1)
}

func TestScenarioBEVMProposalOnNativeNetwork(t *testing.T) {
	f := newFixture(chain.NativeMainnet)

	outcome := f.pipeline.Process(context.Background(), proposalFor(8, "eip155", "eip155:747"))
	assert.Equal(t, Outcome_Rejected, outcome)

	rejected := f.transport.RejectedCalls()
	require.Len(t, rejected, 1)
	assert.Equal(t, transport.ReasonNetworkMismatch, rejected[0].Reason)
	assert.Equal(t, []approval.SwitchPrompt{{Requested: chain.EVMMainnet, Active: chain.NativeMainnet}}, f.notifier.SwitchList())
	assert.Equal(t, 0, f.surface.PromptCount())
	assert.Equal(t, 1, f.transportCalls())
}

func TestUnsupportedNamespaceRejectsWithoutPrompt(t *testing.T) {
	f := newFixture(chain.NativeMainnet)

	for i, key := range []string{"cosmos", "solana", ""} {
		p := proposalFor(uint64(i), key, key+":1")
		assert.Equal(t, Outcome_Rejected, f.pipeline.Process(context.Background(), p))
	}

	for _, r := range f.transport.RejectedCalls() {
		assert.Equal(t, transport.ReasonUnsupportedNamespace, r.Reason)
	}
	assert.Len(t, f.transport.RejectedCalls(), 3)
	assert.Equal(t, 0, f.surface.PromptCount())
	assert.Empty(t, f.notifier.SwitchList())
}

func TestUnresolvableChain(t *testing.T) {
	f := newFixture(chain.NativeMainnet)

	assert.Equal(t, Outcome_Rejected, f.pipeline.Process(context.Background(), proposalFor(1, "eip155", "eip155:1")))
	assert.Equal(t, Outcome_Rejected, f.pipeline.Process(context.Background(), proposalFor(2, "flow", "flow:devnet")))

	rejected := f.transport.RejectedCalls()
	require.Len(t, rejected, 2)
	assert.Equal(t, transport.ReasonUnsupportedChains, rejected[0].Reason)
	assert.Equal(t, transport.ReasonUnsupportedChains, rejected[1].Reason)
}

func TestFastPathForActivePairing(t *testing.T) {
	f := newFixture(chain.EVMTestnet)
	f.transport.SetPairings(&transport.Pairing{Topic: "pairing-1", Active: true})
	require.NoError(t, f.store.ReloadPairings(context.Background()))

	outcome := f.pipeline.Process(context.Background(), proposalFor(9, "eip155", "eip155:545"))
	assert.Equal(t, Outcome_Approved, outcome)
	assert.Equal(t, 0, f.surface.PromptCount())

	approved := f.transport.ApprovedCalls()
	require.Len(t, approved, 1)
	assert.Equal(t, []string{"eip155:545:" + testEVMAddr}, approved[0].Namespaces["eip155"].Accounts)
}

func TestUserDenies(t *testing.T) {
	f := newFixture(chain.NativeTestnet)

	assert.Equal(t, Outcome_Prompted, f.pipeline.Process(context.Background(), proposalFor(3, "flow", "flow:testnet")))
	require.NoError(t, f.surface.Decide(0, false))

	rejected := f.transport.RejectedCalls()
	require.Len(t, rejected, 1)
	assert.Equal(t, transport.ReasonUserRejected, rejected[0].Reason)
	assert.Empty(t, f.transport.ApprovedCalls())
}

func TestTransportFailureToasts(t *testing.T) {
	f := newFixture(chain.NativeMainnet)
	f.transport.ApproveErr = errors.New("socket closed")
	f.transport.RejectErr = errors.New("socket closed")

	f.pipeline.Process(context.Background(), proposalFor(4, "flow", "flow:mainnet"))
	require.NoError(t, f.surface.Decide(0, true))

	assert.Equal(t, Outcome_Failed, f.pipeline.Process(context.Background(), proposalFor(5, "cosmos", "cosmos:1")))
	assert.Equal(t, []string{ToastConnectFailed, ToastConnectFailed}, f.notifier.ToastList())
	assert.Equal(t, 0, f.transportCalls())
}

func TestNoAccountOnRequestedChain(t *testing.T) {
	f := newFixture(chain.EVMMainnet)
	f.pipeline.accounts = account.NewProviderMock(testNativeAddr, "")

	assert.Equal(t, Outcome_Rejected, f.pipeline.Process(context.Background(), proposalFor(6, "eip155", "eip155:747")))
	assert.Equal(t, transport.ReasonUnsupportedAccounts, f.transport.RejectedCalls()[0].Reason)
}
