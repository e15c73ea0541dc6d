package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/actionchain/internal/presentation/tui"
	"github.com/aretw0/actionchain/pkg/domain"
	"golang.org/x/term"
)

// report is what a single run prints.
type report struct {
	Chain   string          `json:"chain"`
	Result  *domain.Result  `json:"result,omitempty"`
	Effects []domain.Effect `json:"effects,omitempty"`
	Trace   string          `json:"trace,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (r *report) ok() bool {
	return r.Error == ""
}

func printReport(out io.Writer, rep *report, opts RunOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			width = tui.ReportWidth
		}
		_, err = fmt.Fprint(out, tui.RenderReport(markdownReport(rep, opts.Trace), width))
		return err
	}

	_, err := fmt.Fprint(out, plainReport(rep, opts.Trace))
	return err
}

func plainReport(rep *report, withTrace bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "chain: %s\n", rep.Chain)
	if !rep.ok() {
		fmt.Fprintf(&b, "status: failed\nerror: %s\n", rep.Error)
	} else {
		b.WriteString("status: ok\n")
		fmt.Fprintf(&b, "result: %s\n", describeResult(rep.Result))
		if msg := strings.TrimSpace(rep.Result.Message); msg != "" {
			b.WriteString(msg + "\n")
		}
		if len(rep.Effects) > 0 {
			fmt.Fprintf(&b, "effects: %s\n", strings.Join(effectNames(rep.Effects), ", "))
		}
	}
	if withTrace && rep.Trace != "" {
		b.WriteString("\n" + rep.Trace)
	}
	return b.String()
}

func markdownReport(rep *report, withTrace bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rep.Chain)
	if !rep.ok() {
		fmt.Fprintf(&b, "**Failed:** %s\n\n", rep.Error)
	} else {
		fmt.Fprintf(&b, "**Result:** %s\n\n", describeResult(rep.Result))
		if msg := strings.TrimSpace(rep.Result.Message); msg != "" {
			for _, line := range strings.Split(msg, "\n") {
				fmt.Fprintf(&b, "- %s\n", line)
			}
			b.WriteString("\n")
		}
		if rep.Result.HasData() {
			b.WriteString(markdownTable(rep.Result.Data))
		}
		if len(rep.Effects) > 0 {
			fmt.Fprintf(&b, "**Effects:** `%s`\n\n", strings.Join(effectNames(rep.Effects), "`, `"))
		}
	}
	if withTrace && rep.Trace != "" {
		fmt.Fprintf(&b, "```mermaid\n%s```\n", rep.Trace)
	}
	return b.String()
}

func markdownTable(ds *domain.Dataset) string {
	if ds.IsEmpty() {
		return ""
	}
	seen := map[string]bool{}
	var cols []string
	for _, row := range ds.Rows {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	var b strings.Builder
	fmt.Fprintf(&b, "| %s |\n", strings.Join(cols, " | "))
	fmt.Fprintf(&b, "|%s\n", strings.Repeat(" --- |", len(cols)))
	for _, row := range ds.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := row[c]; ok {
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintf(&b, "| %s |\n", strings.Join(cells, " | "))
	}
	b.WriteString("\n")
	return b.String()
}

func describeResult(r *domain.Result) string {
	if r == nil {
		return string(domain.ResultEmpty)
	}
	s := string(r.Kind)
	if r.HasData() {
		s += fmt.Sprintf(", %d %s", r.Data.Len(), rowWord(r.Data.Len()))
	}
	if r.Modified {
		s += ", modified"
	}
	return s
}

func rowWord(n int) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}

func effectNames(effects []domain.Effect) []string {
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = e.Entity
	}
	return names
}
