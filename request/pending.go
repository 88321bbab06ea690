package request

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	uatomic "go.uber.org/atomic"

	"github.com/TopiaNetwork/flowlink/approval"
	"github.com/TopiaNetwork/flowlink/transport"
)

// inflight tracks one request from admission to its single reply.
type inflight struct {
	req      *transport.Request
	category Category
	session  *transport.Session
	state    *uatomic.Uint32
	sync     sync.Mutex
	prompt   approval.Prompt
}

func newInflight(req *transport.Request) *inflight {
	return &inflight{
		req:      req,
		category: Classify(req.Method),
		state:    uatomic.NewUint32(uint32(State_Received)),
	}
}

func (inf *inflight) key() string {
	return requestKey(inf.req.Topic, inf.req.ID)
}

func (inf *inflight) State() State {
	return State(inf.state.Load())
}

// advance moves to s unless the request is already replied.
func (inf *inflight) advance(s State) bool {
	for {
		cur := inf.state.Load()
		if State(cur) == State_Replied {
			return false
		}
		if inf.state.CAS(cur, uint32(s)) {
			return true
		}
	}
}

func (inf *inflight) setPrompt(p approval.Prompt) {
	inf.sync.Lock()
	defer inf.sync.Unlock()

	inf.prompt = p
}

func (inf *inflight) currentPrompt() approval.Prompt {
	inf.sync.Lock()
	defer inf.sync.Unlock()

	return inf.prompt
}

func requestKey(topic string, id int64) string {
	return fmt.Sprintf("%s/%d", topic, id)
}

// table is the central pending request table: one correlation slot per session topic and the
// bounded set of request ids already answered.
type table struct {
	sync     sync.Mutex
	slots    map[string]*inflight
	answered *lru.Cache
}

func newTable(answeredSize int) (*table, error) {
	if answeredSize <= 0 {
		answeredSize = 1024
	}
	answered, err := lru.New(answeredSize)
	if err != nil {
		return nil, err
	}

	return &table{
		slots:    make(map[string]*inflight),
		answered: answered,
	}, nil
}

// admit claims the topic slot for inf. It refuses a request already answered or already
// holding the slot, and returns the request inf supersedes, if any.
func (t *table) admit(inf *inflight) (bool, *inflight) {
	t.sync.Lock()
	defer t.sync.Unlock()

	if t.answered.Contains(inf.key()) {
		return false, nil
	}

	current, ok := t.slots[inf.req.Topic]
	if ok && current.req.ID == inf.req.ID {
		return false, nil
	}
	t.slots[inf.req.Topic] = inf

	if ok {
		return true, current
	}
	return true, nil
}

// markAnswered records inf as answered and frees its slot. It returns false if inf was already answered.
func (t *table) markAnswered(inf *inflight) bool {
	t.sync.Lock()
	defer t.sync.Unlock()

	if ok, _ := t.answered.ContainsOrAdd(inf.key(), struct{}{}); ok {
		return false
	}
	if current, ok := t.slots[inf.req.Topic]; ok && current == inf {
		delete(t.slots, inf.req.Topic)
	}
	return true
}

// forget removes inf from the answered set after its reply could not be delivered.
func (t *table) forget(inf *inflight) {
	t.answered.Remove(inf.key())
}

func (t *table) current(topic string) (*inflight, bool) {
	t.sync.Lock()
	defer t.sync.Unlock()

	inf, ok := t.slots[topic]
	return inf, ok
}

// dropTopic frees the slot of a deleted session and returns the request it held.
func (t *table) dropTopic(topic string) *inflight {
	t.sync.Lock()
	defer t.sync.Unlock()

	inf := t.slots[topic]
	delete(t.slots, topic)
	return inf
}

func (t *table) inFlight() int {
	t.sync.Lock()
	defer t.sync.Unlock()

	return len(t.slots)
}
