package handler

const (
	MethodAuthn          = "flow_authn"
	MethodPreAuthz       = "flow_pre_authz"
	MethodAuthz          = "flow_authz"
	MethodUserSign       = "flow_user_sign"
	MethodAccountInfo    = "frw_account_info"
	MethodAddDeviceKey   = "frw_add_device_key"
	MethodPersonalSign   = "personal_sign"
	MethodSendTx         = "eth_sendTransaction"
	MethodSignTypedData  = "eth_signTypedData"
	MethodSignTypedData3 = "eth_signTypedData_v3"
	MethodSignTypedData4 = "eth_signTypedData_v4"
	MethodWatchAsset     = "wallet_watchAsset"
)

var NativeMethods = []string{
	MethodAuthn,
	MethodPreAuthz,
	MethodAuthz,
	MethodUserSign,
	MethodAccountInfo,
	MethodAddDeviceKey,
}

var EVMMethods = []string{
	MethodPersonalSign,
	MethodSendTx,
	MethodSignTypedData,
	MethodSignTypedData3,
	MethodSignTypedData4,
	MethodWatchAsset,
}
