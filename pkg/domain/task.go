package domain

// Task is the input snapshot and parameters an action is invoked with.
// The executor hands every action its own copy.
type Task struct {
	Input  *Dataset       `json:"input,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// NewTask creates a task over the given input.
func NewTask(input *Dataset, params map[string]any) *Task {
	if params == nil {
		params = make(map[string]any)
	}
	return &Task{Input: input, Params: params}
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return NewTask(nil, nil)
	}
	params := make(map[string]any, len(t.Params))
	for k, v := range t.Params {
		params[k] = cloneValue(v)
	}
	return &Task{Input: t.Input.Clone(), Params: params}
}

// WithInput returns a copy of the task bound to a copy of input.
func (t *Task) WithInput(input *Dataset) *Task {
	out := t.Clone()
	out.Input = input.Clone()
	return out
}

// Param returns a named invocation parameter.
func (t *Task) Param(name string) (any, bool) {
	if t == nil || t.Params == nil {
		return nil, false
	}
	v, ok := t.Params[name]
	return v, ok
}
