package graph

import (
	"fmt"
	"strings"

	"github.com/xdsai/persephone/pkg/domain"
)

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart for a story.
// It applies semantic styling:
// - Start: ((Circle))
// - Ending: ([Stadium])
// - Hub: {{Hexagon}}
// - Default: [Rectangle]
// Gated choices get dotted arrows labelled with their text, and lock-at nodes
// are outlined in red. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(story *domain.Story, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if story == nil {
		return sb.String()
	}

	known := make(map[string]bool, len(story.Nodes))
	for _, node := range story.Nodes {
		known[node.ID] = true
	}

	for _, node := range story.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == story.Start:
			opener, closer = "((", "))"
		case node.IsEnding():
			opener, closer = "([", "])"
		case node.ID == story.Meta.Flow.HubNodeID:
			opener, closer = "{{", "}}"
		}

		label := node.ID
		if node.IsEnding() && node.Title != "" {
			label = fmt.Sprintf("%s <br/> %s", node.ID, escapeLabel(node.Title))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, c := range node.Choices {
			safeTo := sanitizeMermaidID(c.To)
			text := escapeLabel(c.Text)

			arrow := fmt.Sprintf("-- \"%s\" -->", text)
			if len(c.Conditions) > 0 {
				arrow = fmt.Sprintf("-. \"%s\" .->", text)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, safeTo)

			// Targets outside the graph get an explicit marker node.
			if !known[c.To] {
				fmt.Fprintf(&sb, "    %s[\"%s (missing)\"]\n", safeTo, c.To)
				known[c.To] = true
			}
		}
	}

	for _, cmd := range story.Meta.HiddenCommands {
		if cmd.Effect == "" || !known[cmd.Effect] {
			continue
		}
		fmt.Fprintf(&sb, "    cmd_%s>\"/%s\"] -.-> %s\n",
			sanitizeMermaidID(cmd.Cmd), escapeLabel(cmd.Cmd), sanitizeMermaidID(cmd.Effect))
	}

	if locks := story.Meta.Flow.LockAtNodeIDs; len(locks) > 0 {
		sb.WriteString("\n    %% Point of no return\n")
		sb.WriteString("    classDef lock stroke:#c62828,stroke-width:3px;\n")
		for _, id := range locks {
			fmt.Fprintf(&sb, "    class %s lock;\n", sanitizeMermaidID(id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")
	return r.Replace(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
