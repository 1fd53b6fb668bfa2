package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/trustroute/internal/presentation/graph"
	"github.com/aretw0/trustroute/internal/presentation/tui"
	"github.com/aretw0/trustroute/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Snapshot output formats.
const (
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
	FormatMermaid  = "mermaid"
)

// SnapshotMarkdown renders both tables as markdown. Pairs list every action in
// insertion order with the best one in bold; nodes below threshold are marked gated.
func SnapshotMarkdown(snap domain.Snapshot, threshold float64) string {
	var sb strings.Builder
	sb.WriteString("# Q-table\n\n")
	if len(snap.QTable) == 0 {
		sb.WriteString("_empty_\n\n")
	} else {
		sb.WriteString("| Source | Destination | Actions |\n|---|---|---|\n")
		for _, p := range snap.QTable {
			best := p.Actions.Best()
			cells := make([]string, 0, len(p.Actions))
			for _, av := range p.Actions {
				cell := fmt.Sprintf("%s=%.4f", av.Action, av.Value)
				if av.Action == best.Action {
					cell = "**" + cell + "**"
				}
				cells = append(cells, cell)
			}
			fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", p.Src, p.Dst, strings.Join(cells, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("# Trust\n\n")
	if len(snap.Trust) == 0 {
		sb.WriteString("_empty_\n")
		return sb.String()
	}
	sb.WriteString("| Node | Trust | Gate |\n|---|---|---|\n")
	for _, t := range snap.Trust {
		gate := "open"
		if t.Trust < threshold {
			gate = "**gated**"
		}
		fmt.Fprintf(&sb, "| `%s` | %.4f | %s |\n", t.Node, t.Trust, gate)
	}
	return sb.String()
}

// WriteSnapshot prints snap to w in the given format.
func WriteSnapshot(w io.Writer, snap domain.Snapshot, threshold float64, format string) error {
	switch format {
	case "", FormatMarkdown:
		return tui.WriteMarkdown(w, SnapshotMarkdown(snap, threshold))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return enc.Close()
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(snap, threshold))
		return err
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidArgument, format)
	}
}
