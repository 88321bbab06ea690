package configuration

import (
	"os"
	"path/filepath"
	"time"
)

type NodeConfiguration struct {
	RootPath string
	// TimerResolution is the tick of the shared timer manager.
	TimerResolution time.Duration
	// NTPServers, when set, correct the clock expiries are judged against.
	NTPServers      []string
	NTPSyncInterval time.Duration
	// Address is the native account the wallet key controls, derived from the key when empty.
	Address  string
	KeyIndex uint32
}

func DefNodeConfiguration() *NodeConfiguration {
	homeDir, _ := os.UserHomeDir()
	return &NodeConfiguration{
		RootPath:        filepath.Join(homeDir, ".flowlink"),
		TimerResolution: time.Second,
		NTPSyncInterval: 10 * time.Minute,
	}
}
