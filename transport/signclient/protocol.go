package signclient

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/TopiaNetwork/flowlink/transport"
)

const jsonrpcVersion = "2.0"

const (
	methodInit            = "wc_init"
	methodCreatePairing   = "wc_createPairing"
	methodPair            = "wc_pair"
	methodGetSessions     = "wc_getSessions"
	methodGetPairings     = "wc_getPairings"
	methodApproveSession  = "wc_approveSession"
	methodRejectSession   = "wc_rejectSession"
	methodRespond         = "wc_respond"
	methodPendingRequests = "wc_getPendingRequests"
	methodDisconnect      = "wc_disconnect"
	methodConnect         = "wc_connect"
	methodRequest         = "wc_request"
)

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     int64               `json:"id"`
	Result json.RawMessage     `json:"result,omitempty"`
	Error  *transport.RPCError `json:"error,omitempty"`
}

type initParams struct {
	ClientID  string             `json:"clientId"`
	ProjectID string             `json:"projectId"`
	RelayURL  string             `json:"relayUrl"`
	Metadata  transport.Metadata `json:"metadata"`
}

type pairingResult struct {
	Topic string `json:"topic"`
	URI   string `json:"uri"`
}

type approveParams struct {
	ID         uint64               `json:"id"`
	Namespaces transport.Namespaces `json:"namespaces"`
}

type rejectParams struct {
	ID     uint64              `json:"id"`
	Reason *transport.RPCError `json:"reason"`
}

type topicParams struct {
	Topic string `json:"topic"`
}

type uriParams struct {
	URI string `json:"uri"`
}

type connectParams struct {
	RequiredNamespaces transport.Namespaces `json:"requiredNamespaces"`
}

type requestParams struct {
	Topic   string `json:"topic"`
	ChainID string `json:"chainId"`
	Request struct {
		Method string      `json:"method"`
		Params interface{} `json:"params"`
	} `json:"request"`
}

type requestResult struct {
	ID int64 `json:"id"`
}

// isResponse reports whether frame answers one of our calls rather than being a notification.
func isResponse(frame []byte) bool {
	return gjson.GetBytes(frame, "id").Exists() && !gjson.GetBytes(frame, "method").Exists()
}

func decodeNotification(frame []byte) (*transport.Event, error) {
	kind := transport.ParseEventKind(gjson.GetBytes(frame, "method").String())
	params := gjson.GetBytes(frame, "params")

	ev := &transport.Event{Kind: kind}
	var target interface{}
	switch kind {
	case transport.EventKind_Proposal:
		ev.Proposal = new(transport.Proposal)
		target = ev.Proposal
	case transport.EventKind_SessionSettled:
		ev.Session = new(transport.Session)
		target = ev.Session
	case transport.EventKind_Request:
		ev.Request = new(transport.Request)
		target = ev.Request
	case transport.EventKind_Response:
		ev.Response = new(transport.Response)
		target = ev.Response
	case transport.EventKind_SessionDeleted, transport.EventKind_SessionExtended, transport.EventKind_PairingDeleted:
		ev.Topic = params.Get("topic").String()
		return ev, nil
	default:
		return nil, errUnknownNotification
	}

	if err := json.Unmarshal([]byte(params.Raw), target); err != nil {
		return nil, err
	}
	if ev.Session != nil {
		ev.Topic = ev.Session.Topic
	}
	if ev.Request != nil {
		ev.Topic = ev.Request.Topic
	}
	if ev.Response != nil {
		ev.Topic = ev.Response.Topic
	}

	return ev, nil
}
