package domain

// ResultKind identifies which variant a Result holds.
type ResultKind string

const (
	ResultData    ResultKind = "data"
	ResultMessage ResultKind = "message"
	ResultEmpty   ResultKind = "empty"
)

// Result is what a single action invocation (or a whole chain) produces.
//
//   - Data: a dataset, the modified flag and an optional message.
//   - Message: a text and the modified flag.
//   - Empty: the modified flag only.
type Result struct {
	Kind     ResultKind `json:"kind" yaml:"kind"`
	Data     *Dataset   `json:"data,omitempty" yaml:"data,omitempty"`
	Message  string     `json:"message,omitempty" yaml:"message,omitempty"`
	Modified bool       `json:"modified" yaml:"modified"`
}

// DataResult creates a Data result.
func DataResult(data *Dataset, modified bool) *Result {
	return &Result{Kind: ResultData, Data: data, Modified: modified}
}

// MessageResult creates a Message result.
func MessageResult(text string, modified bool) *Result {
	return &Result{Kind: ResultMessage, Message: text, Modified: modified}
}

// EmptyResult creates an Empty result.
func EmptyResult(modified bool) *Result {
	return &Result{Kind: ResultEmpty, Modified: modified}
}

// WithMessage returns a copy of the result carrying msg.
func (r *Result) WithMessage(msg string) *Result {
	out := r.Clone()
	out.Message = msg
	return out
}

// HasData reports whether the result carries a dataset.
func (r *Result) HasData() bool {
	return r != nil && r.Kind == ResultData && r.Data != nil
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Data = r.Data.Clone()
	return &out
}
