package request

import "github.com/TopiaNetwork/flowlink/handler"

type Category byte

const (
	Category_Unsupported Category = iota
	Category_Authentication
	Category_PreAuthorization
	Category_Authorization
	Category_MessageSigning
	Category_EVMPersonalSign
	Category_EVMDelegated
	Category_AccountInfo
	Category_AddDeviceInfo
)

var categoryNames = map[Category]string{
	Category_Unsupported:      "unsupported",
	Category_Authentication:   "authentication",
	Category_PreAuthorization: "pre-authorization",
	Category_Authorization:    "authorization",
	Category_MessageSigning:   "message-signing",
	Category_EVMPersonalSign:  "evm-personal-sign",
	Category_EVMDelegated:     "evm-delegated",
	Category_AccountInfo:      "account-info",
	Category_AddDeviceInfo:    "add-device-info",
}

func (c Category) String() string {
	return categoryNames[c]
}

// Classify maps a method name to its category. Every method maps to exactly one category.
func Classify(method string) Category {
	switch method {
	case handler.MethodAuthn:
		return Category_Authentication
	case handler.MethodPreAuthz:
		return Category_PreAuthorization
	case handler.MethodAuthz:
		return Category_Authorization
	case handler.MethodUserSign:
		return Category_MessageSigning
	case handler.MethodPersonalSign:
		return Category_EVMPersonalSign
	case handler.MethodSendTx, handler.MethodSignTypedData, handler.MethodSignTypedData3, handler.MethodSignTypedData4, handler.MethodWatchAsset:
		return Category_EVMDelegated
	case handler.MethodAccountInfo:
		return Category_AccountInfo
	case handler.MethodAddDeviceKey:
		return Category_AddDeviceInfo
	}
	return Category_Unsupported
}

type State byte

const (
	State_Received State = iota
	State_Classified
	State_AwaitingApproval
	State_AutoApproved
	State_Composing
	State_Replied
	// State_Ignored marks a re-delivery of a request already tracked or answered.
	State_Ignored
)

func (s State) String() string {
	switch s {
	case State_Received:
		return "received"
	case State_Classified:
		return "classified"
	case State_AwaitingApproval:
		return "awaiting-approval"
	case State_AutoApproved:
		return "auto-approved"
	case State_Composing:
		return "composing"
	case State_Replied:
		return "replied"
	case State_Ignored:
		return "ignored"
	}
	return "unknown"
}
