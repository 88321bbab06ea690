package transport

import (
	"encoding/json"
	"sort"
)

type Redirect struct {
	Native    string `json:"native,omitempty"`
	Universal string `json:"universal,omitempty"`
}

// Metadata identifies a peer application.
type Metadata struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Icons       []string  `json:"icons"`
	Redirect    *Redirect `json:"redirect,omitempty"`
}

func (m *Metadata) Icon() string {
	if m == nil || len(m.Icons) == 0 {
		return ""
	}
	return m.Icons[0]
}

// RedirectURL is the link returning focus to the peer, native scheme preferred.
func (m *Metadata) RedirectURL() string {
	if m == nil || m.Redirect == nil {
		return ""
	}
	if m.Redirect.Native != "" {
		return m.Redirect.Native
	}
	return m.Redirect.Universal
}

type Namespace struct {
	Chains   []string `json:"chains,omitempty"`
	Methods  []string `json:"methods"`
	Events   []string `json:"events"`
	Accounts []string `json:"accounts,omitempty"`
}

// Namespaces maps a family tag, or a full chain id such as "eip155:747", to its namespace.
type Namespaces map[string]Namespace

func (ns Namespaces) Keys() []string {
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Pairing struct {
	Topic  string    `json:"topic"`
	Peer   *Metadata `json:"peerMetadata,omitempty"`
	Active bool      `json:"active"`
	Expiry int64     `json:"expiry"`
}

type Proposal struct {
	ID                 uint64     `json:"id"`
	PairingTopic       string     `json:"pairingTopic"`
	Proposer           Metadata   `json:"proposer"`
	RequiredNamespaces Namespaces `json:"requiredNamespaces"`
	OptionalNamespaces Namespaces `json:"optionalNamespaces,omitempty"`
}

// AllNamespaces iterates required then optional namespaces under their keys.
func (p *Proposal) AllNamespaces(fn func(key string, ns Namespace)) {
	for _, k := range p.RequiredNamespaces.Keys() {
		fn(k, p.RequiredNamespaces[k])
	}
	for _, k := range p.OptionalNamespaces.Keys() {
		fn(k, p.OptionalNamespaces[k])
	}
}

type Session struct {
	Topic        string     `json:"topic"`
	PairingTopic string     `json:"pairingTopic"`
	Peer         Metadata   `json:"peer"`
	Namespaces   Namespaces `json:"namespaces"`
	Expiry       int64      `json:"expiry"`
}

type Request struct {
	Topic   string          `json:"topic"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	ChainID string          `json:"chainId"`
	Params  json.RawMessage `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

type Response struct {
	Topic  string          `json:"topic"`
	ID     int64           `json:"id"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

func (r *Response) IsError() bool {
	return r.Error != nil
}

func NewResultResponse(topic string, id int64, result interface{}) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{Topic: topic, ID: id, Result: data}, nil
}

func NewErrorResponse(topic string, id int64, reason *RPCError) *Response {
	return &Response{Topic: topic, ID: id, Error: reason}
}
