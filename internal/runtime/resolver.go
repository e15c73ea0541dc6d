package runtime

import (
	"strings"

	"github.com/aretw0/actionchain/pkg/domain"
)

// resolve picks the result representing the whole chain.
//
// results holds one entry per configured step (nil for skipped steps) and
// executed lists the invoked steps in order. It returns the resolved result and
// the index of the step it came from, or NoIndex.
func resolve(p *Plan, results []*domain.Result, executed []int, modified bool) (*domain.Result, int) {
	var picked *domain.Result
	from := NoIndex

	switch {
	case p.ResultIndex != NoIndex:
		// A skipped step left no result behind: that resolves to Empty, not to a later step.
		if r := results[p.ResultIndex]; r != nil {
			picked, from = r, p.ResultIndex
		}
	case len(executed) > 0:
		last := executed[len(executed)-1]
		picked, from = results[last], last
	}

	var out *domain.Result
	if picked == nil {
		out = domain.EmptyResult(modified)
	} else {
		out = picked.Clone()
	}

	msg := composeMessage(p, results, executed)
	switch {
	case out.Kind == domain.ResultEmpty && strings.TrimSpace(msg) != "":
		out = domain.MessageResult(msg, modified)
	case msg != "":
		out.Message = msg
	}

	out.Modified = modified
	return out, from
}

func composeMessage(p *Plan, results []*domain.Result, executed []int) string {
	if p.Message != "" {
		return p.Message
	}

	parts := make([]string, 0, len(executed))
	for _, i := range executed {
		if r := results[i]; r != nil && r.Message != "" {
			parts = append(parts, r.Message)
		}
	}
	return strings.TrimSpace(strings.Join(parts, p.MessageDelimiter))
}
