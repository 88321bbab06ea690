package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/transport"
)

type askedPrompt struct {
	prompt  Prompt
	decide  Decision
	decided bool
}

// SurfaceMock records prompts. With AutoAnswer set every prompt is answered inline.
type SurfaceMock struct {
	sync       sync.Mutex
	AutoAnswer *bool
	asked      []*askedPrompt
	Dismissed  []Prompt
}

func NewSurfaceMock() *SurfaceMock {
	return &SurfaceMock{}
}

func NewAutoSurfaceMock(approve bool) *SurfaceMock {
	return &SurfaceMock{AutoAnswer: &approve}
}

func (sm *SurfaceMock) Ask(ctx context.Context, prompt Prompt, decide Decision) {
	sm.sync.Lock()
	ap := &askedPrompt{prompt: prompt, decide: decide}
	sm.asked = append(sm.asked, ap)
	auto := sm.AutoAnswer
	if auto != nil {
		ap.decided = true
	}
	sm.sync.Unlock()

	if auto != nil {
		decide(*auto)
	}
}

func (sm *SurfaceMock) Dismiss(prompt Prompt) {
	sm.sync.Lock()
	defer sm.sync.Unlock()

	sm.Dismissed = append(sm.Dismissed, prompt)
}

func (sm *SurfaceMock) Prompts() []Prompt {
	sm.sync.Lock()
	defer sm.sync.Unlock()

	prompts := make([]Prompt, 0, len(sm.asked))
	for _, ap := range sm.asked {
		prompts = append(prompts, ap.prompt)
	}
	return prompts
}

func (sm *SurfaceMock) PromptCount() int {
	sm.sync.Lock()
	defer sm.sync.Unlock()

	return len(sm.asked)
}

// Decide answers the i-th prompt.
func (sm *SurfaceMock) Decide(i int, approved bool) error {
	sm.sync.Lock()
	if i < 0 || i >= len(sm.asked) {
		sm.sync.Unlock()
		return fmt.Errorf("no prompt %d", i)
	}
	ap := sm.asked[i]
	if ap.decided {
		sm.sync.Unlock()
		return errors.New("prompt already decided")
	}
	ap.decided = true
	sm.sync.Unlock()

	ap.decide(approved)
	return nil
}

type SwitchPrompt struct {
	Requested chain.ChainID
	Active    chain.ChainID
}

type NotifierMock struct {
	sync        sync.Mutex
	RedirectErr error
	Toasts      []string
	Switches    []SwitchPrompt
	Redirects   []string
	Pending     [][]*transport.Request
}

func (nm *NotifierMock) Toast(message string) {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	nm.Toasts = append(nm.Toasts, message)
}

func (nm *NotifierMock) SwitchNetwork(requested chain.ChainID, active chain.ChainID) {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	nm.Switches = append(nm.Switches, SwitchPrompt{requested, active})
}

func (nm *NotifierMock) Redirect(url string) error {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	nm.Redirects = append(nm.Redirects, url)
	return nm.RedirectErr
}

func (nm *NotifierMock) PendingChanged(requests []*transport.Request) {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	nm.Pending = append(nm.Pending, requests)
}

func (nm *NotifierMock) ToastList() []string {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	return append([]string(nil), nm.Toasts...)
}

func (nm *NotifierMock) SwitchList() []SwitchPrompt {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	return append([]SwitchPrompt(nil), nm.Switches...)
}

func (nm *NotifierMock) RedirectList() []string {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	return append([]string(nil), nm.Redirects...)
}

func (nm *NotifierMock) LastPending() []*transport.Request {
	nm.sync.Lock()
	defer nm.sync.Unlock()

	if len(nm.Pending) == 0 {
		return nil
	}
	return nm.Pending[len(nm.Pending)-1]
}
