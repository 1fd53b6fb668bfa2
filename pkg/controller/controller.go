package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/aretw0/trustroute/pkg/feedback"
	"github.com/aretw0/trustroute/pkg/ports"
)

// ErrFeedback wraps failures that happen after the packet-out was built.
var ErrFeedback = errors.New("outcome feedback failed")

// Engine is the part of the decision engine the controller drives.
type Engine interface {
	Decide(ctx context.Context, src, dst domain.NodeID, candidates []domain.Action) (domain.Decision, error)
	OnOutcomeObserved(ctx context.Context, outcome domain.Outcome) error
}

// Controller turns switch events into engine calls.
type Controller struct {
	engine    Engine
	feedback  ports.OutcomeSource
	logger    *slog.Logger
	onOutcome func(result string)
}

// Option configures the Controller.
type Option func(*Controller)

// WithFeedback replaces the stub outcome source.
func WithFeedback(src ports.OutcomeSource) Option {
	return func(c *Controller) {
		c.feedback = src
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithOutcomeObserver is called with "applied", "rejected" or "error" after each feedback.
func WithOutcomeObserver(fn func(result string)) Option {
	return func(c *Controller) {
		c.onOutcome = fn
	}
}

// New creates a controller. Without WithFeedback every decision is credited with the
// stub outcome (reward 1, success rate 0.9).
func New(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:    engine,
		feedback:  feedback.Stub(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		onOutcome: func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleSwitchFeatures returns the table-miss entry for a newly connected switch:
// lowest priority, match everything, send whole frames to the controller.
func (c *Controller) HandleSwitchFeatures(ctx context.Context, dpid DatapathID) FlowMod {
	c.logger.InfoContext(ctx, "Handshake with switch", "datapath_id", dpid.String())
	return FlowMod{
		DatapathID: dpid,
		Priority:   TableMissPriority,
		Actions:    []OutputAction{{Port: PortOf(domain.ControllerPort), MaxLen: MaxLenNoBuffer}},
	}
}

// HandlePacketIn decides where a frame goes and feeds the outcome back to the learner.
//
// Non-Ethernet frames are rejected with domain.ErrNotEthernet. When feedback fails
// after the decision, the packet-out is still returned together with an error
// wrapping ErrFeedback, since the frame must be forwarded either way.
func (c *Controller) HandlePacketIn(ctx context.Context, in PacketIn) (*PacketOut, error) {
	src, dst, err := ParseEthernet(in.Data)
	if err != nil {
		return nil, err
	}

	d, err := c.engine.Decide(ctx, src, dst, in.Candidates)
	if err != nil {
		return nil, err
	}

	out := &PacketOut{
		DatapathID: in.DatapathID,
		BufferID:   in.BufferID,
		InPort:     in.InPort,
		Actions:    []OutputAction{{Port: PortOf(d.Action)}},
		Decision:   d,
	}
	if in.BufferID == NoBuffer {
		out.Data = in.Data
	}
	c.logger.InfoContext(ctx, "Packet forwarded",
		"datapath_id", in.DatapathID.String(),
		"src", src,
		"dst", dst,
		"in_port", in.InPort,
		"action", d.Action,
	)

	if err := c.applyFeedback(ctx, d); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Controller) applyFeedback(ctx context.Context, d domain.Decision) error {
	outcome, err := c.feedback.Outcome(ctx, d)
	if err != nil {
		c.onOutcome("error")
		return fmt.Errorf("%w: %w", ErrFeedback, err)
	}
	if err := c.engine.OnOutcomeObserved(ctx, outcome); err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidArgument) {
			result = "rejected"
		}
		c.onOutcome(result)
		c.logger.WarnContext(ctx, "Outcome not applied", "decision_id", d.ID, "err", err)
		return fmt.Errorf("%w: %w", ErrFeedback, err)
	}
	c.onOutcome("applied")
	return nil
}
