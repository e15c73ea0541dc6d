package domain

// Orientation is the layout hint of a rendered trace.
type Orientation string

const (
	OrientationTopDown   Orientation = "TD"
	OrientationLeftRight Orientation = "LR"
)

// TraceNodeKind distinguishes the synthetic nodes from the action nodes.
type TraceNodeKind string

const (
	TraceNodeTask   TraceNodeKind = "task"
	TraceNodeAction TraceNodeKind = "action"
	TraceNodeResult TraceNodeKind = "result"
	TraceNodeError  TraceNodeKind = "error"
)

// EdgeStyle is how an edge is drawn.
type EdgeStyle string

const (
	EdgeSolid  EdgeStyle = "solid"
	EdgeDotted EdgeStyle = "dotted"
	EdgeError  EdgeStyle = "error"
)

// TraceNode is a vertex of the execution trace.
type TraceNode struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Kind   TraceNodeKind `json:"kind"`
	Index  int           `json:"index"`
	Failed bool          `json:"failed,omitempty"`
}

// TraceEdge is a data hand-over between two nodes.
type TraceEdge struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Label string    `json:"label,omitempty"`
	Style EdgeStyle `json:"style"`
}

// Trace is the finalized record of a chain run.
type Trace struct {
	Orientation Orientation `json:"orientation"`
	Nodes       []TraceNode `json:"nodes"`
	Edges       []TraceEdge `json:"edges"`
	Failed      bool        `json:"failed"`
	// Diagram is the rendered Mermaid flowchart.
	Diagram string `json:"diagram"`
}

// String returns the rendered diagram.
func (t *Trace) String() string {
	if t == nil {
		return ""
	}
	return t.Diagram
}
