package transport

var (
	ReasonUserRejected         = &RPCError{Code: 5000, Message: "user rejected"}
	ReasonUnsupportedChains    = &RPCError{Code: 5100, Message: "unresolvable chain"}
	ReasonNetworkMismatch      = &RPCError{Code: 5100, Message: "network mismatch"}
	ReasonUnsupportedMethod    = &RPCError{Code: 5101, Message: "unsupported method"}
	ReasonUnsupportedAccounts  = &RPCError{Code: 5103, Message: "unsupported accounts"}
	ReasonUnsupportedNamespace = &RPCError{Code: 5104, Message: "unsupported namespace"}
	ReasonSessionGone          = &RPCError{Code: 6000, Message: "session not found"}
	ReasonDecodeFailure        = &RPCError{Code: -32602, Message: "invalid params"}
	ReasonSigningFailure       = &RPCError{Code: -32000, Message: "signing failed"}
	ReasonSuperseded           = &RPCError{Code: -32000, Message: "request superseded"}
)
