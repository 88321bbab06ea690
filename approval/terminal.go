package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/TopiaNetwork/flowlink/chain"
	tplog "github.com/TopiaNetwork/flowlink/log"
	"github.com/TopiaNetwork/flowlink/transport"
)

var (
	_ Surface  = (*TerminalSurface)(nil)
	_ Notifier = (*TerminalSurface)(nil)
)

type pendingAsk struct {
	prompt Prompt
	decide Decision
}

// TerminalSurface asks prompts on a line oriented terminal, one at a time in arrival order.
type TerminalSurface struct {
	log   tplog.Logger
	in    *bufio.Reader
	out   io.Writer
	sync  sync.Mutex
	queue chan *pendingAsk
}

func NewTerminalSurface(log tplog.Logger, in io.Reader, out io.Writer) *TerminalSurface {
	return &TerminalSurface{
		log:   log,
		in:    bufio.NewReader(in),
		out:   out,
		queue: make(chan *pendingAsk, 32),
	}
}

// Run answers queued prompts until ctx is done or input ends.
func (ts *TerminalSurface) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ask := <-ts.queue:
			ts.printf("%s\n[y/N] > ", Describe(ask.prompt))
			line, err := ts.in.ReadString('\n')
			if err != nil && line == "" {
				ts.log.Warnf("terminal input closed: %v", err)
				ask.decide(false)
				return
			}
			answer := strings.ToLower(strings.TrimSpace(line))
			ask.decide(answer == "y" || answer == "yes")
		}
	}
}

func (ts *TerminalSurface) Ask(ctx context.Context, prompt Prompt, decide Decision) {
	select {
	case ts.queue <- &pendingAsk{prompt, decide}:
	default:
		ts.log.Warnf("approval queue full, denying %s prompt", prompt.Kind())
		decide(false)
	}
}

func (ts *TerminalSurface) Dismiss(prompt Prompt) {
	ts.log.Debugf("dismiss %s prompt", prompt.Kind())
}

func (ts *TerminalSurface) Toast(message string) {
	ts.printf("! %s\n", message)
}

func (ts *TerminalSurface) SwitchNetwork(requested chain.ChainID, active chain.ChainID) {
	ts.printf("! the dApp asked for %s while the wallet is on %s, switch networks and reconnect\n", requested, active)
}

// Redirect prints the link back to the dApp; a terminal cannot focus another application.
func (ts *TerminalSurface) Redirect(url string) error {
	ts.printf("-> back to %s\n", url)
	return nil
}

func (ts *TerminalSurface) PendingChanged(requests []*transport.Request) {
	if len(requests) == 0 {
		return
	}
	ts.printf("%d pending request(s):\n", len(requests))
	for _, r := range requests {
		ts.printf("  #%d %s on %s\n", r.ID, r.Method, r.Topic)
	}
}

func (ts *TerminalSurface) printf(format string, args ...interface{}) {
	ts.sync.Lock()
	defer ts.sync.Unlock()

	fmt.Fprintf(ts.out, format, args...)
}

// Describe renders prompt as a short human readable summary.
func Describe(prompt Prompt) string {
	peer := prompt.PeerInfo()
	switch p := prompt.(type) {
	case *SessionPrompt:
		return fmt.Sprintf("%s (%s) wants to connect on %s with %s", peer.Name, peer.URL, p.Chain, p.Address)
	case *TransactionPrompt:
		return fmt.Sprintf("%s asks to sign a transaction on %s:\n%s\nargs: %d", peer.Name, p.Chain, p.Script, len(p.Arguments))
	case *MessagePrompt:
		return fmt.Sprintf("%s asks to sign (%s):\n%s", peer.Name, p.Method, p.Message)
	case *DevicePrompt:
		return fmt.Sprintf("Add device %s (%s) from %s %s", p.Device.DeviceInfo.Name, p.Device.DeviceInfo.DeviceID, p.Device.DeviceInfo.City, p.Device.DeviceInfo.Country)
	case *EVMPrompt:
		return fmt.Sprintf("%s calls %s on %s: %s", peer.Name, p.Method, p.Chain, string(p.Params))
	}
	return fmt.Sprintf("%s prompt from %s", prompt.Kind(), peer.Name)
}
