package configuration

type RequestConfiguration struct {
	// AnsweredCacheSize bounds the set of request ids already replied to.
	AnsweredCacheSize int
	// CapabilityPath is the storage path of the COA capability used in EVM ownership proofs.
	CapabilityPath string
	// PayerAddress, when set, is advertised as payer in pre-authorization bundles.
	PayerAddress string
	PayerKeyIndex uint32
}

func DefRequestConfiguration() *RequestConfiguration {
	return &RequestConfiguration{
		AnsweredCacheSize: 1024,
		CapabilityPath:    "evm",
	}
}
