package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AsynkronIT/protoactor-go/actor"
	"github.com/hashicorp/go-multierror"

	"github.com/TopiaNetwork/flowlink/account"
	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/chain"
	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	"github.com/TopiaNetwork/flowlink/connect"
	tplog "github.com/TopiaNetwork/flowlink/log"
	tplogcmm "github.com/TopiaNetwork/flowlink/log/common"
	tptime "github.com/TopiaNetwork/flowlink/time"
	"github.com/TopiaNetwork/flowlink/transport/signclient"
	tpwallet "github.com/TopiaNetwork/flowlink/wallet"
)

// WalletNode runs one wallet against a sign client daemon with a terminal approval surface.
type WalletNode struct {
	log          tplog.Logger
	level        tplogcmm.LogLevel
	config       *tpconfig.Configuration
	timerMng     tptime.TimerManager
	wallet       tpwallet.Wallet
	client       *signclient.Client
	surface      *approval.TerminalSurface
	orchestrator *connect.Orchestrator
	cancel       context.CancelFunc
}

func createLogger(config *tpconfig.LogConfiguration) (tplogcmm.LogLevel, tplog.Logger, error) {
	level, err := tplogcmm.ParseLogLevel(config.Level)
	if err != nil {
		return level, nil, err
	}
	format, err := tplog.ParseLogFormat(config.Format)
	if err != nil {
		return level, nil, err
	}
	output, err := tplog.ParseLogOutput(config.Output)
	if err != nil {
		return level, nil, err
	}

	mainLog, err := tplog.CreateMainLogger(level, format, output, config.File)
	return level, mainLog, err
}

// NewWalletNode builds the wallet over the key store under the root path. A non empty keyHex
// is imported as the default key, a key is generated when the store has none.
func NewWalletNode(config *tpconfig.Configuration, passphrase string, keyHex string) (*WalletNode, error) {
	level, mainLog, err := createLogger(config.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	w, err := openWallet(level, mainLog, config.NodeConfig, passphrase, keyHex)
	if err != nil {
		return nil, err
	}
	signer, accounts, err := loadSigner(level, mainLog, w, config.NodeConfig)
	if err != nil {
		w.Close()
		return nil, err
	}
	mainLog.Infof("wallet account %s, evm %s", accounts.native, accounts.evm)

	sysActor := actor.NewActorSystem()
	timerMng := tptime.NewTimerManager(tplog.CreateModuleLogger(level, "TimerManager", mainLog), "wallet", config.NodeConfig.TimerResolution)

	var clock tptime.Clock
	if len(config.NodeConfig.NTPServers) > 0 {
		clock = tptime.NewNTPClock(tplog.CreateModuleLogger(level, "Clock", mainLog), config.NodeConfig.NTPServers, timerMng, config.NodeConfig.NTPSyncInterval)
	}

	client := signclient.NewClient(tplog.CreateModuleLogger(level, "SignClient", mainLog), config.ConnectConfig)
	surface := approval.NewTerminalSurface(tplog.CreateModuleLogger(level, "Terminal", mainLog), os.Stdin, os.Stdout)

	orchestrator, err := connect.NewOrchestrator(level, mainLog, "wallet", sysActor, config, &connect.Collaborators{
		Transport: client,
		Signer:    signer,
		Accounts:  accounts,
		Devices:   &loggingDevices{log: mainLog},
		EVM:       &localEVM{log: mainLog},
		Network:   chain.NewNetwork(chain.ParseName(config.NetworkConfig.ActiveNetwork)),
		Surface:   surface,
		Notifier:  surface,
		TimerMng:  timerMng,
		SyncSink:  &terminalSink{surface: surface},
		Clock:     clock,
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	return &WalletNode{
		log:          mainLog,
		level:        level,
		config:       config,
		timerMng:     timerMng,
		wallet:       w,
		client:       client,
		surface:      surface,
		orchestrator: orchestrator,
	}, nil
}

// Start blocks until SIGTERM or SIGINT. A non empty uri is paired once the wallet is up,
// syncDevice prints the uri a primary wallet scans to sync this one.
func (n *WalletNode) Start(uri string, syncDevice bool) error {
	var gracefulStop = make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM)
	signal.Notify(gracefulStop, syscall.SIGINT)

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel

	if err := n.client.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("sign client: %w", err)
	}
	if err := n.orchestrator.Start(ctx); err != nil {
		cancel()
		n.client.Close()
		return err
	}
	n.orchestrator.SetAuthenticated(true)

	go n.surface.Run(ctx)

	if uri != "" {
		if err := n.orchestrator.HandleIncomingLink(ctx, uri); err != nil {
			n.log.Errorf("pair %s: %v", uri, err)
		}
	}

	if syncDevice {
		syncURI, err := n.SyncDevice(ctx)
		if err != nil {
			n.log.Errorf("device sync: %v", err)
		} else {
			fmt.Printf("Scan with the primary wallet: %s\n", syncURI)
		}
	}

	fmt.Println("Wallet is ready")

	sig := <-gracefulStop
	n.log.Debugf("caught sig: %v", sig)
	n.log.Warn("GRACEFUL STOP WALLET")

	return n.Stop()
}

// SyncDevice starts a device sync handshake and returns the uri to show the primary wallet.
func (n *WalletNode) SyncDevice(ctx context.Context) (string, error) {
	return n.orchestrator.StartDeviceSync(ctx)
}

func (n *WalletNode) Stop() error {
	var errs error
	n.orchestrator.SetAuthenticated(false)
	if err := n.orchestrator.Stop(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := n.client.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	n.timerMng.Stop()
	if err := n.wallet.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if n.cancel != nil {
		n.cancel()
	}

	return errs
}

type terminalSink struct {
	surface *approval.TerminalSurface
}

func (s *terminalSink) ShowProfile(profile *account.Profile) {
	s.surface.Toast(fmt.Sprintf("synced with %s (%s)", profile.Name, profile.Address))
}

func (s *terminalSink) DeviceAdded(device *account.DeviceRequest) {
	s.surface.Toast(fmt.Sprintf("device %s was added", device.DeviceInfo.Name))
}

func (s *terminalSink) SyncFailed(err error) {
	s.surface.Toast(fmt.Sprintf("device sync failed: %v", err))
}
