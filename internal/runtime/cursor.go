package runtime

import "github.com/aretw0/actionchain/pkg/ports"

// Cursor hands out the actions of a plan one at a time, in configuration order.
// Once Next has returned false, or Stop was called, the cursor is exhausted and
// every later Next returns false.
type Cursor struct {
	actions []ports.Action
	next    int
	done    bool
}

// NewCursor creates a cursor positioned before the first action.
func NewCursor(actions []ports.Action) *Cursor {
	return &Cursor{actions: actions}
}

// Next returns the next step index and action.
func (c *Cursor) Next() (int, ports.Action, bool) {
	if c.done || c.next >= len(c.actions) {
		c.done = true
		return 0, nil, false
	}
	i := c.next
	c.next++
	return i, c.actions[i], true
}

// Stop exhausts the cursor.
func (c *Cursor) Stop() {
	c.done = true
}

// Remaining is the number of actions Next would still return.
func (c *Cursor) Remaining() int {
	if c.done {
		return 0
	}
	return len(c.actions) - c.next
}
