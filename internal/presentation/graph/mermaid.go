package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/trustroute/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the learned forwarding state.
// Each (src, dst) pair becomes one edge labelled with its best action:
// - Learned port: solid arrow "port N (value)"
// - Flood: dotted arrow
// Nodes whose trust is below threshold are drawn as hexagons and styled as gated.
func GenerateMermaid(snap domain.Snapshot, threshold float64) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	trust := make(map[domain.NodeID]float64, len(snap.Trust))
	for _, t := range snap.Trust {
		trust[t.Node] = t.Trust
	}

	seen := make(map[domain.NodeID]bool)
	var nodes []domain.NodeID
	add := func(n domain.NodeID) {
		if !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	for _, p := range snap.QTable {
		add(p.Src)
		add(p.Dst)
	}
	for _, t := range snap.Trust {
		add(t.Node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var gated []string
	for _, n := range nodes {
		safeID := sanitizeMermaidID(string(n))
		opener, closer := "[", "]"
		label := string(n)
		if score, ok := trust[n]; ok {
			label = fmt.Sprintf("%s <br/> trust %.3f", n, score)
			if score < threshold {
				opener, closer = "{{", "}}"
				gated = append(gated, safeID)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, p := range snap.QTable {
		if len(p.Actions) == 0 {
			continue
		}
		best := p.Actions.Best()
		arrow := fmt.Sprintf("-- \"port %s (%.3f)\" -->", best.Action, best.Value)
		if best.Action.IsFlood() {
			arrow = fmt.Sprintf("-. \"FLOOD (%.3f)\" .->", best.Value)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(string(p.Src)), arrow, sanitizeMermaidID(string(p.Dst))))
	}

	if len(gated) > 0 {
		sb.WriteString("\n    %% Trust Gate\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef gated fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		for _, id := range gated {
			sb.WriteString(fmt.Sprintf("    class %s gated;\n", id))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ":", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return "n_" + s
}
