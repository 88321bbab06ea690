package configuration

type NetworkConfiguration struct {
	// ActiveNetwork names the chain the wallet starts on, e.g. "mainnet" or "evm-testnet".
	ActiveNetwork string
}

func DefNetworkConfiguration() *NetworkConfiguration {
	return &NetworkConfiguration{
		ActiveNetwork: "mainnet",
	}
}
