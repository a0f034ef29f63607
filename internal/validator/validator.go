package validator

import (
	"fmt"
	"strings"

	"github.com/xdsai/persephone/internal/compiler"
	"github.com/xdsai/persephone/pkg/domain"
)

// Severity grades an Issue. Errors are things the engine has to work around at
// runtime; warnings are likely authoring mistakes that still play fine.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding about a story document.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.NodeID == "" {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.NodeID, i.Message)
}

// Report collects the issues found in a story.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(sev Severity, nodeID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the error-severity issues.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err summarizes the error-severity issues, or returns nil when there are none.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, issue := range errs {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Validate lints a story: graph integrity, reachability from the start node,
// condition operators, hidden command requirements and flow configuration.
func Validate(story *domain.Story) *Report {
	r := &Report{}
	if story == nil || len(story.Nodes) == 0 {
		r.add(SeverityError, "", "story has no nodes")
		return r
	}

	nodes := make(map[string]*domain.Node, len(story.Nodes))
	var first string
	for i := range story.Nodes {
		n := &story.Nodes[i]
		switch {
		case n.ID == "":
			r.add(SeverityError, "", "node at position %d has no id", i)
			continue
		case nodes[n.ID] != nil:
			r.add(SeverityError, n.ID, "duplicate node id")
			continue
		}
		if first == "" {
			first = n.ID
		}
		nodes[n.ID] = n
	}

	start := story.Start
	if nodes[start] == nil {
		r.add(SeverityError, start, "start node not found, the engine falls back to %q", first)
		start = first
	}

	for _, id := range order(story) {
		checkNode(r, story, nodes, nodes[id])
	}
	checkFlow(r, story, nodes)
	checkCommands(r, story, nodes)

	visited := crawl(story, nodes, start)
	for _, id := range order(story) {
		if !visited[id] {
			r.add(SeverityWarning, id, "node is unreachable from %q", start)
		}
	}
	return r
}

// order lists the indexed node ids in declaration order, first declaration only.
func order(story *domain.Story) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, n := range story.Nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		ids = append(ids, n.ID)
	}
	return ids
}

func checkNode(r *Report, story *domain.Story, nodes map[string]*domain.Node, n *domain.Node) {
	if n.IsEnding() {
		if len(n.Choices) > 0 {
			r.add(SeverityWarning, n.ID, "ending node declares %d choices that are never shown", len(n.Choices))
		}
		if n.EndingID == "" {
			r.add(SeverityWarning, n.ID, "ending node has no endingId")
		}
		return
	}
	if len(n.Choices) == 0 {
		r.add(SeverityWarning, n.ID, "regular node has no choices and is a dead end")
	}

	for i, c := range n.Choices {
		if nodes[c.To] == nil {
			r.add(SeverityError, n.ID, "choice %d (%q) targets missing node %q", i, c.Text, c.To)
		}
		for _, cond := range c.Conditions {
			if !cond.Op.Valid() {
				r.add(SeverityError, n.ID, "choice %d (%q) uses unknown operator %q", i, c.Text, cond.Op)
			}
		}
		if c.Precedence() == 0 {
			r.add(SeverityWarning, n.ID, "choice %d (%q) has unknown variant %q", i, c.Text, c.Variant)
		}
		if c.Variant != "" && c.Slug == "" {
			r.add(SeverityWarning, n.ID, "choice %d (%q) has a variant but no slug to group by", i, c.Text)
		}
		if c.Effects != nil {
			for _, slug := range c.Effects.AddLore {
				if !story.Meta.LoreRegistry.Has(slug) {
					r.add(SeverityWarning, n.ID, "choice %d (%q) adds unregistered lore %q", i, c.Text, slug)
				}
			}
		}
	}
}

func checkFlow(r *Report, story *domain.Story, nodes map[string]*domain.Node) {
	flow := story.Meta.Flow
	if flow.HubNodeID != "" && nodes[flow.HubNodeID] == nil {
		r.add(SeverityWarning, flow.HubNodeID, "hub node not found")
	}
	for _, id := range flow.LockAtNodeIDs {
		if nodes[id] == nil {
			r.add(SeverityWarning, id, "lock-at node not found")
		}
	}
}

func checkCommands(r *Report, story *domain.Story, nodes map[string]*domain.Node) {
	names := make(map[string]string)
	for _, cmd := range story.Meta.HiddenCommands {
		if cmd.Cmd == "" {
			r.add(SeverityError, "", "hidden command without a name")
		}
		for _, name := range cmd.Names() {
			key := strings.ToLower(name)
			if owner, dup := names[key]; dup && key != "" {
				r.add(SeverityWarning, "", "hidden command name %q is shared by %q and %q", name, owner, cmd.Cmd)
			}
			names[key] = cmd.Cmd
		}

		for _, cond := range cmd.Requires.Conditions {
			if !cond.Op.Valid() {
				r.add(SeverityError, "", "hidden command %q requirement uses unknown operator %q", cmd.Cmd, cond.Op)
			}
		}
		if cmd.Requires.Expr != "" {
			if _, err := compiler.EvalRequires(cmd.Requires.Expr, nil); err != nil {
				r.add(SeverityError, "", "hidden command %q requirement does not parse: %v", cmd.Cmd, err)
			}
		}
	}
}

// crawl walks choice edges and hidden command jumps breadth-first from start.
func crawl(story *domain.Story, nodes map[string]*domain.Node, start string) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{start}
	for _, cmd := range story.Meta.HiddenCommands {
		if nodes[cmd.Effect] != nil {
			queue = append(queue, cmd.Effect)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := nodes[id]
		if n == nil || visited[id] {
			continue
		}
		visited[id] = true
		for _, c := range n.Choices {
			if !visited[c.To] {
				queue = append(queue, c.To)
			}
		}
	}
	return visited
}
