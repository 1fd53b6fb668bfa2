package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/aretw0/trustroute/internal/presentation/tui"
	"github.com/aretw0/trustroute/pkg/controller"
	"github.com/aretw0/trustroute/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Trace is a scripted sequence of frames and outcomes.
type Trace struct {
	DatapathID controller.DatapathID `yaml:"datapath_id"`
	Steps      []Step                `yaml:"steps"`
}

// Step is either a frame or an outcome, optionally repeated.
type Step struct {
	Frame   *FrameStep      `yaml:"frame,omitempty"`
	Outcome *domain.Outcome `yaml:"outcome,omitempty"`
	Repeat  int             `yaml:"repeat,omitempty"`
}

// FrameStep describes a frame arriving at the switch.
type FrameStep struct {
	Src        string          `yaml:"src"`
	Dst        string          `yaml:"dst"`
	InPort     uint32          `yaml:"in_port"`
	Candidates []domain.Action `yaml:"candidates"`
	// Buffered makes the switch keep the frame and send a buffer id.
	Buffered bool `yaml:"buffered"`
}

// LoadTrace reads a YAML trace file.
func LoadTrace(path string) (Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Trace{}, fmt.Errorf("failed to read trace: %w", err)
	}
	var trace Trace
	if err := yaml.Unmarshal(data, &trace); err != nil {
		return Trace{}, fmt.Errorf("failed to parse trace: %w", err)
	}
	for i, s := range trace.Steps {
		if (s.Frame == nil) == (s.Outcome == nil) {
			return Trace{}, fmt.Errorf("%w: step %d must have exactly one of frame or outcome", domain.ErrInvalidArgument, i+1)
		}
		if s.Repeat < 0 {
			return Trace{}, fmt.Errorf("%w: step %d has negative repeat", domain.ErrInvalidArgument, i+1)
		}
	}
	return trace, nil
}

// SimulationReport summarises a replay.
type SimulationReport struct {
	Decisions []domain.Decision
	Outcomes  int
	// FeedbackErrors counts packet-ins whose stub feedback was not applied.
	FeedbackErrors int
}

// Simulate replays trace through the controller, writing one line per decision to w.
func Simulate(ctx context.Context, rt *Runtime, trace Trace, w io.Writer) (SimulationReport, error) {
	var report SimulationReport
	palette := tui.NewPalette(w)
	var nextBuffer uint32

	for i, step := range trace.Steps {
		n := max(step.Repeat, 1)
		for range n {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			if step.Outcome != nil {
				if err := rt.Engine.OnOutcomeObserved(ctx, *step.Outcome); err != nil {
					return report, fmt.Errorf("step %d: %w", i+1, err)
				}
				report.Outcomes++
				continue
			}

			in, err := packetIn(trace.DatapathID, step.Frame, &nextBuffer)
			if err != nil {
				return report, fmt.Errorf("step %d: %w", i+1, err)
			}
			out, err := rt.Controller.HandlePacketIn(ctx, in)
			if err != nil && (out == nil || !errors.Is(err, controller.ErrFeedback)) {
				return report, fmt.Errorf("step %d: %w", i+1, err)
			}
			if err != nil {
				report.FeedbackErrors++
				fmt.Fprintln(w, palette.Warn(fmt.Sprintf("step %d: %v", i+1, err)))
			}
			report.Decisions = append(report.Decisions, out.Decision)
			fmt.Fprintln(w, formatDecision(palette, len(report.Decisions), out.Decision))
		}
	}
	return report, nil
}

func packetIn(dpid controller.DatapathID, f *FrameStep, nextBuffer *uint32) (controller.PacketIn, error) {
	src, err := net.ParseMAC(f.Src)
	if err != nil {
		return controller.PacketIn{}, fmt.Errorf("%w: src: %v", domain.ErrInvalidArgument, err)
	}
	dst, err := net.ParseMAC(f.Dst)
	if err != nil {
		return controller.PacketIn{}, fmt.Errorf("%w: dst: %v", domain.ErrInvalidArgument, err)
	}
	frame, err := controller.BuildEthernetFrame(src, dst, controller.ExperimentalEtherType, nil)
	if err != nil {
		return controller.PacketIn{}, err
	}

	in := controller.PacketIn{
		DatapathID: dpid,
		BufferID:   controller.NoBuffer,
		InPort:     f.InPort,
		Data:       frame,
		Candidates: f.Candidates,
	}
	if f.Buffered {
		in.BufferID = *nextBuffer
		*nextBuffer++
	}
	return in, nil
}

func formatDecision(p tui.Palette, n int, d domain.Decision) string {
	action := p.Port("port " + d.Action.String())
	if d.Action.IsFlood() {
		action = p.Flood("FLOOD")
	}
	line := fmt.Sprintf("#%-4d %s -> %s  %s  trust=%.3f learned=%s(%.3f)",
		n, d.Src, d.Dst, action, d.Trust, d.Learned.Action, d.Learned.Value)
	if d.Gated {
		line += " " + p.Warn("gated")
	}
	if d.Seeded {
		line += " seeded"
	}
	return line
}
