package request

import (
	"context"

	"github.com/TopiaNetwork/flowlink/handler"
	"github.com/TopiaNetwork/flowlink/transport"
)

// completion is the one-shot reply handle of an inflight request. Only the first Approve or
// Deny produces a reply.
type completion struct {
	ctx      context.Context
	pipeline *Pipeline
	inf      *inflight
}

var _ handler.Completion = (*completion)(nil)

func (c *completion) Approve(result interface{}) {
	resp, err := transport.NewResultResponse(c.inf.req.Topic, c.inf.req.ID, result)
	if err != nil {
		c.pipeline.log.Errorf("encode result of %s err: %v", c.inf.req.Method, err)
		c.Deny(transport.ReasonSigningFailure)
		return
	}
	c.pipeline.reply(c.ctx, c.inf, resp)
}

func (c *completion) Deny(reason *transport.RPCError) {
	c.pipeline.reply(c.ctx, c.inf, transport.NewErrorResponse(c.inf.req.Topic, c.inf.req.ID, reason))
}
