package chain

import (
	"sync"
)

type NetworkChangedHandler func(previous ChainID, current ChainID)

// NetworkProvider exposes the wallet's currently active network.
type NetworkProvider interface {
	CurrentChainID() ChainID

	// OnNetworkChanged registers handler and returns a function removing it.
	OnNetworkChanged(handler NetworkChangedHandler) (cancel func())
}

// Network is an in-memory NetworkProvider switched explicitly by the wallet.
type Network struct {
	sync     sync.Mutex
	current  ChainID
	nextID   int
	handlers map[int]NetworkChangedHandler
}

func NewNetwork(current ChainID) *Network {
	return &Network{
		current:  current,
		handlers: make(map[int]NetworkChangedHandler),
	}
}

func (n *Network) CurrentChainID() ChainID {
	n.sync.Lock()
	defer n.sync.Unlock()

	return n.current
}

func (n *Network) OnNetworkChanged(handler NetworkChangedHandler) func() {
	n.sync.Lock()
	defer n.sync.Unlock()

	id := n.nextID
	n.nextID++
	n.handlers[id] = handler

	return func() {
		n.sync.Lock()
		defer n.sync.Unlock()
		delete(n.handlers, id)
	}
}

// Switch activates to and notifies the handlers when the network actually changes.
func (n *Network) Switch(to ChainID) {
	n.sync.Lock()
	previous := n.current
	if previous == to {
		n.sync.Unlock()
		return
	}
	n.current = to
	handlers := make([]NetworkChangedHandler, 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.sync.Unlock()

	for _, h := range handlers {
		h(previous, to)
	}
}
