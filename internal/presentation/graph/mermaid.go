package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/actionchain/pkg/domain"
)

const (
	taskID   = "task"
	resultID = "result"
	errorID  = "error"
)

// maxLabel caps the error message shown on the Error node.
const maxLabel = 80

// Recorder builds the execution trace of a single chain run.
// It is write-only while the run is in progress and is rendered exactly once,
// by Succeed or Fail. Later calls return the trace already rendered.
type Recorder struct {
	orientation domain.Orientation
	nodes       []domain.TraceNode
	edges       []domain.TraceEdge
	skipped     map[int]bool
	prev        string
	prevSkipped bool
	executed    []int
	final       *domain.Trace
}

// NewRecorder creates a recorder for a chain whose actions carry the given labels.
// Chains of more than three actions are laid out top-down, shorter ones left-to-right.
func NewRecorder(labels []string) *Recorder {
	r := &Recorder{
		orientation: domain.OrientationLeftRight,
		skipped:     make(map[int]bool),
		prev:        taskID,
	}
	if len(labels) > 3 {
		r.orientation = domain.OrientationTopDown
	}

	r.nodes = append(r.nodes, domain.TraceNode{ID: taskID, Label: "Task", Kind: domain.TraceNodeTask, Index: -1})
	for i, label := range labels {
		r.nodes = append(r.nodes, domain.TraceNode{ID: actionID(i), Label: label, Kind: domain.TraceNodeAction, Index: i})
	}
	return r
}

// Enter records the hand-over of input to step i before it is invoked.
func (r *Recorder) Enter(i int, input *domain.Dataset) {
	r.link(actionID(i), input.Describe(), r.enterStyle())
	r.executed = append(r.executed, i)
	r.prevSkipped = false
}

// Skip records that step i was not invoked.
func (r *Recorder) Skip(i int, input *domain.Dataset) {
	r.link(actionID(i), input.Describe(), domain.EdgeDotted)
	r.skipped[i] = true
	r.prevSkipped = true
}

// Succeed finalizes the trace of a completed run. The Result node is linked
// from step from, or from the last executed step when from is negative.
func (r *Recorder) Succeed(from int, result *domain.Result) *domain.Trace {
	if r.final != nil {
		return r.final
	}

	source := taskID
	switch {
	case from >= 0:
		source = actionID(from)
	case len(r.executed) > 0:
		source = actionID(r.executed[len(r.executed)-1])
	}

	label := ""
	if result.HasData() {
		label = result.Data.Describe()
	}

	r.nodes = append(r.nodes, domain.TraceNode{ID: resultID, Label: "Result", Kind: domain.TraceNodeResult, Index: -1})
	r.edges = append(r.edges, domain.TraceEdge{From: source, To: resultID, Label: label, Style: domain.EdgeSolid})
	return r.finalize(false)
}

// Fail finalizes the trace of an aborted run. Step at (or the Task node, when
// at is negative) is linked to the Error node and both get the error style.
func (r *Recorder) Fail(at int, err error) *domain.Trace {
	if r.final != nil {
		return r.final
	}

	source := taskID
	if at >= 0 {
		source = actionID(at)
		r.nodes[at+1].Failed = true
	}

	label := "Error"
	if err != nil {
		label = "Error: " + truncate(err.Error(), maxLabel)
	}
	r.nodes = append(r.nodes, domain.TraceNode{ID: errorID, Label: label, Kind: domain.TraceNodeError, Index: -1, Failed: true})
	r.edges = append(r.edges, domain.TraceEdge{From: source, To: errorID, Style: domain.EdgeError})
	return r.finalize(true)
}

func (r *Recorder) link(to, label string, style domain.EdgeStyle) {
	r.edges = append(r.edges, domain.TraceEdge{From: r.prev, To: to, Label: label, Style: style})
	r.prev = to
}

// enterStyle makes the edge leaving a skipped step dotted as well.
func (r *Recorder) enterStyle() domain.EdgeStyle {
	if r.prevSkipped {
		return domain.EdgeDotted
	}
	return domain.EdgeSolid
}

func (r *Recorder) finalize(failed bool) *domain.Trace {
	trace := &domain.Trace{
		Orientation: r.orientation,
		Nodes:       r.nodes,
		Edges:       r.edges,
		Failed:      failed,
	}
	trace.Diagram = GenerateMermaid(trace, r.skippedIDs())
	r.final = trace
	return trace
}

func (r *Recorder) skippedIDs() []string {
	var ids []string
	for _, node := range r.nodes {
		if node.Kind == domain.TraceNodeAction && r.skipped[node.Index] {
			ids = append(ids, node.ID)
		}
	}
	return ids
}

// GenerateMermaid produces Mermaid flowchart syntax for a trace.
// It applies semantic styling:
// - Task/Result: ((Circle))
// - Action: [Rectangle]
// - Error: {{Hexagon}}
// Skipped hand-overs are dotted, the failure edge is crossed.
func GenerateMermaid(trace *domain.Trace, skipped []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("graph %s\n", trace.Orientation))

	for _, node := range trace.Nodes {
		opener, closer := "[", "]"
		switch node.Kind {
		case domain.TraceNodeTask, domain.TraceNodeResult:
			opener, closer = "((", "))"
		case domain.TraceNodeError:
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", node.ID, opener, escapeLabel(node.Label), closer))
	}

	for _, edge := range trace.Edges {
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", edge.From, arrow(edge), edge.To))
	}

	var failed []string
	for _, node := range trace.Nodes {
		if node.Failed {
			failed = append(failed, node.ID)
		}
	}

	if len(failed) > 0 || len(skipped) > 0 {
		sb.WriteString("\n    %% Run Styles\n")
		// Force black text (color:#000) so labels stay readable on light and dark themes
		sb.WriteString("    classDef error fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:5 5,color:#000;\n")
		if len(failed) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s error;\n", strings.Join(failed, ",")))
		}
		if len(skipped) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s skipped;\n", strings.Join(skipped, ",")))
		}
	}

	return sb.String()
}

func arrow(edge domain.TraceEdge) string {
	label := escapeLabel(edge.Label)
	switch edge.Style {
	case domain.EdgeDotted:
		if label == "" {
			return "-.->"
		}
		return fmt.Sprintf("-. \"%s\" .->", label)
	case domain.EdgeError:
		return "--x"
	default:
		if label == "" {
			return "-->"
		}
		return fmt.Sprintf("-- \"%s\" -->", label)
	}
}

func actionID(i int) string {
	return fmt.Sprintf("a%d", i)
}

// escapeLabel keeps labels inside Mermaid's double-quoted strings.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
