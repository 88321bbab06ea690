package signclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"

	tpconfig "github.com/TopiaNetwork/flowlink/configuration"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/transport"
)

var (
	ErrClosed              = errors.New("sign client closed")
	errUnknownNotification = errors.New("unknown notification")
)

const eventBufferSize = 128

// Client speaks JSON-RPC over a websocket to a sign client daemon and implements transport.Transport.
type Client struct {
	log        tplog.Logger
	config     *tpconfig.ConnectConfiguration
	clientID   string
	conn       *websocket.Conn
	send       chan []byte
	events     chan *transport.Event
	idGen      *atomic.Int64
	closed     *atomic.Bool
	sync       sync.Mutex
	requestRes map[int64]chan *rpcResponse
	done       chan struct{}
	wg         sync.WaitGroup
}

var _ transport.Transport = (*Client)(nil)

func NewClient(log tplog.Logger, config *tpconfig.ConnectConfiguration) *Client {
	return &Client{
		log:        log,
		config:     config,
		clientID:   uuid.New().String(),
		send:       make(chan []byte, 16),
		events:     make(chan *transport.Event, eventBufferSize),
		idGen:      atomic.NewInt64(time.Now().UnixNano() / int64(time.Millisecond)),
		closed:     atomic.NewBool(false),
		requestRes: make(map[int64]chan *rpcResponse),
		done:       make(chan struct{}),
	}
}

func (c *Client) ClientID() string {
	return c.clientID
}

// Start dials the daemon, runs the pumps and initializes the remote sign client.
func (c *Client) Start(ctx context.Context) error {
	dialer := &websocket.Dialer{HandshakeTimeout: c.config.RequestTimeout}
	conn, _, err := dialer.DialContext(ctx, c.config.SignClientAddr, nil)
	if err != nil {
		c.log.Errorf("dial sign client %s err: %v", c.config.SignClientAddr, err)
		return err
	}
	c.conn = conn

	c.wg.Add(2)
	go c.writePump()
	go c.readPump()

	meta := transport.Metadata{}
	if m := c.config.Metadata; m != nil {
		meta = transport.Metadata{
			Name:        m.Name,
			Description: m.Description,
			URL:         m.URL,
			Icons:       m.Icons,
			Redirect:    &transport.Redirect{Native: m.RedirectNative, Universal: m.RedirectUniversal},
		}
	}

	return c.call(ctx, methodInit, &initParams{
		ClientID:  c.clientID,
		ProjectID: c.config.ProjectID,
		RelayURL:  c.config.RelayURL,
		Metadata:  meta,
	}, nil)
}

func (c *Client) Close() error {
	if !c.closed.CAS(false, true) {
		return nil
	}
	close(c.done)

	var result error
	if c.conn != nil {
		deadline := time.Now().Add(time.Second)
		if err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline); err != nil {
			result = multierror.Append(result, err)
		}
		if err := c.conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.wg.Wait()

	c.sync.Lock()
	for id, ch := range c.requestRes {
		close(ch)
		delete(c.requestRes, id)
	}
	c.sync.Unlock()
	close(c.events)

	return result
}

func (c *Client) readPump() {
	defer c.wg.Done()

	if c.config.MaxMessageSize > 0 {
		c.conn.SetReadLimit(int64(c.config.MaxMessageSize))
	}
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.log.Errorf("ReadMessage from conn err: %v", err)
			}
			return
		}
		c.dealMessage(message)
	}
}

func (c *Client) writePump() {
	defer c.wg.Done()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Errorf("WriteMessage err: %v", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) dealMessage(message []byte) {
	if isResponse(message) {
		var resp rpcResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			c.log.Errorf("invalid response frame: %v", err)
			return
		}

		c.sync.Lock()
		resChan, ok := c.requestRes[resp.ID]
		delete(c.requestRes, resp.ID)
		c.sync.Unlock()
		if !ok {
			c.log.Warnf("response %d res chan not found", resp.ID)
			return
		}
		resChan <- &resp
		return
	}

	ev, err := decodeNotification(message)
	if err != nil {
		c.log.Warnf("drop notification: %v", err)
		return
	}

	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if c.closed.Load() {
		return ErrClosed
	}

	id := c.idGen.Inc()
	data, err := json.Marshal(&rpcRequest{JSONRPC: jsonrpcVersion, ID: id, Method: method, Params: params})
	if err != nil {
		return err
	}

	resChan := make(chan *rpcResponse, 1)
	c.sync.Lock()
	c.requestRes[id] = resChan
	c.sync.Unlock()

	cleanup := func() {
		c.sync.Lock()
		delete(c.requestRes, id)
		c.sync.Unlock()
	}

	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	select {
	case c.send <- data:
	case <-ctx.Done():
		cleanup()
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}

	select {
	case resp, ok := <-resChan:
		if !ok {
			return ErrClosed
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, resp.Error)
		}
		if result != nil && len(resp.Result) > 0 {
			return json.Unmarshal(resp.Result, result)
		}
		return nil
	case <-ctx.Done():
		cleanup()
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

func (c *Client) CreatePairing(ctx context.Context) (string, string, error) {
	var res pairingResult
	if err := c.call(ctx, methodCreatePairing, nil, &res); err != nil {
		return "", "", err
	}
	return res.Topic, res.URI, nil
}

func (c *Client) Pair(ctx context.Context, uri string) error {
	return c.call(ctx, methodPair, &uriParams{URI: uri}, nil)
}

func (c *Client) Sessions(ctx context.Context) ([]*transport.Session, error) {
	var sessions []*transport.Session
	err := c.call(ctx, methodGetSessions, nil, &sessions)
	return sessions, err
}

func (c *Client) Pairings(ctx context.Context) ([]*transport.Pairing, error) {
	var pairings []*transport.Pairing
	err := c.call(ctx, methodGetPairings, nil, &pairings)
	return pairings, err
}

func (c *Client) Approve(ctx context.Context, proposalID uint64, namespaces transport.Namespaces) error {
	return c.call(ctx, methodApproveSession, &approveParams{ID: proposalID, Namespaces: namespaces}, nil)
}

func (c *Client) RejectSession(ctx context.Context, proposalID uint64, reason *transport.RPCError) error {
	return c.call(ctx, methodRejectSession, &rejectParams{ID: proposalID, Reason: reason}, nil)
}

func (c *Client) Respond(ctx context.Context, response *transport.Response) error {
	return c.call(ctx, methodRespond, response, nil)
}

func (c *Client) PendingRequests(ctx context.Context) ([]*transport.Request, error) {
	var requests []*transport.Request
	err := c.call(ctx, methodPendingRequests, nil, &requests)
	return requests, err
}

func (c *Client) Disconnect(ctx context.Context, topic string) error {
	return c.call(ctx, methodDisconnect, &topicParams{Topic: topic}, nil)
}

func (c *Client) Connect(ctx context.Context, required transport.Namespaces) (string, string, error) {
	var res pairingResult
	if err := c.call(ctx, methodConnect, &connectParams{RequiredNamespaces: required}, &res); err != nil {
		return "", "", err
	}
	return res.Topic, res.URI, nil
}

func (c *Client) SendRequest(ctx context.Context, topic string, chainID string, method string, params interface{}) (int64, error) {
	p := &requestParams{Topic: topic, ChainID: chainID}
	p.Request.Method = method
	p.Request.Params = params

	var res requestResult
	if err := c.call(ctx, methodRequest, p, &res); err != nil {
		return 0, err
	}
	return res.ID, nil
}

func (c *Client) Events() <-chan *transport.Event {
	return c.events
}
