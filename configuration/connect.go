package configuration

import "time"

type WalletMetadata struct {
	Name              string
	Description       string
	URL               string
	Icons             []string
	RedirectNative    string
	RedirectUniversal string
}

type ConnectConfiguration struct {
	// SignClientAddr is the websocket endpoint of the sign client daemon.
	SignClientAddr string
	ProjectID      string
	RelayURL       string
	Metadata       *WalletMetadata
	RequestTimeout time.Duration
	MaxMessageSize int
	// LinkPrefixes are the universal link prefixes carrying a pairing uri in their "uri" query value.
	LinkPrefixes []string
}

func DefConnectConfiguration() *ConnectConfiguration {
	return &ConnectConfiguration{
		SignClientAddr: "ws://127.0.0.1:8733/sign",
		RelayURL:       "wss://relay.walletconnect.com",
		Metadata: &WalletMetadata{
			Name:              "Flowlink Wallet",
			Description:       "Flowlink dApp connector",
			URL:               "https://flowlink.dev",
			Icons:             []string{"https://flowlink.dev/icon.png"},
			RedirectNative:    "flowlink://",
			RedirectUniversal: "https://link.flowlink.dev",
		},
		RequestTimeout: 30 * time.Second,
		MaxMessageSize: 1 << 20,
		LinkPrefixes:   []string{"https://link.flowlink.dev/wc", "flowlink://wc"},
	}
}
