package approval

import (
	"context"

	"github.com/TopiaNetwork/flowlink/chain"
	"github.com/TopiaNetwork/flowlink/transport"
)

// Decision receives the user's answer to a prompt. It is invoked at most once.
type Decision func(approved bool)

// Surface presents prompts to the user. Ask must not block on the user: it returns once
// the prompt is shown and calls decide later.
type Surface interface {
	Ask(ctx context.Context, prompt Prompt, decide Decision)

	// Dismiss removes a prompt that no longer needs an answer.
	Dismiss(prompt Prompt)
}

// Notifier carries the transient, non blocking signals to the user.
type Notifier interface {
	Toast(message string)

	// SwitchNetwork offers to change the active network from active to requested.
	SwitchNetwork(requested chain.ChainID, active chain.ChainID)

	// Redirect returns focus to the peer application.
	Redirect(url string) error

	PendingChanged(requests []*transport.Request)
}
