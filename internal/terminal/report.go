package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/ExoZora/exozora-core/internal/core"
	"github.com/ExoZora/exozora-core/internal/core/execution"
	"github.com/ExoZora/exozora-core/internal/core/policy"
	"github.com/ExoZora/exozora-core/internal/core/runs"
)

// maxOutputLines bounds how much command output is shown per task.
const maxOutputLines = 20

// Renderer formats gate verdicts, execution results and run history.
type Renderer struct {
	width    int
	style    *StyleConfig
	markdown *Markdown
}

// NewRenderer creates a renderer. When renderMarkdown is false, or the
// markdown renderer cannot be built, reports are printed as raw markdown.
func NewRenderer(width int, renderMarkdown bool) *Renderer {
	if width <= 0 {
		width = 80
	}
	r := &Renderer{width: width, style: DefaultStyleConfig()}
	if renderMarkdown {
		if md, err := NewMarkdown(width); err == nil {
			r.markdown = md
		}
	}
	return r
}

// PlanReport renders the task list of a plan with the violations found in
// it, if any.
func (r *Renderer) PlanReport(source string, tasks []core.Task, violations []policy.Violation) string {
	return r.markdown.Render(PlanMarkdown(source, tasks, violations))
}

// PlanMarkdown builds the markdown report used by PlanReport.
func PlanMarkdown(source string, tasks []core.Task, violations []policy.Violation) string {
	byIndex := make(map[int]error, len(violations))
	for _, v := range violations {
		byIndex[v.Index] = v.Err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Plan `%s`\n\n", source)
	if len(tasks) == 0 {
		b.WriteString("_No tasks._\n")
		return b.String()
	}

	b.WriteString("| # | Task | Target | Verdict |\n")
	b.WriteString("|---|------|--------|---------|\n")
	for i, task := range tasks {
		kind, target := core.Describe(task)
		verdict := "ok"
		if err, ok := byIndex[i]; ok {
			verdict = "**" + escapeCell(err.Error()) + "**"
		}
		fmt.Fprintf(&b, "| %d | %s | `%s` | %s |\n", i, kind, escapeCell(target), verdict)
	}

	if len(violations) > 0 {
		fmt.Fprintf(&b, "\n%d of %d tasks violate policy.\n", len(violations), len(tasks))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Verdict renders the outcome of a validation.
func (r *Renderer) Verdict(taskCount int, err error) string {
	switch {
	case err == nil:
		return r.style.success(fmt.Sprintf("✓ plan approved (%d tasks)", taskCount))
	case policy.IsPolicyError(err):
		return r.style.failure("✗ plan rejected:") + " " + err.Error()
	default:
		return r.style.failure("✗ validation error:") + " " + err.Error()
	}
}

// Results renders executor results.
func (r *Renderer) Results(results []*execution.Result) string {
	var b strings.Builder
	for _, res := range results {
		label := fmt.Sprintf("[%d] %s %s", res.Index, res.Kind, res.Target)
		switch {
		case res.Skipped:
			b.WriteString("  " + r.style.subtle("- "+label+" (dry run)") + "\n")
		case res.Failed():
			b.WriteString("  " + r.style.failure("✗ "+label) + "\n")
			fmt.Fprintf(&b, "    %s\n", r.style.warning(fmt.Sprintf("exit %d: %v", res.ExitCode, res.Error)))
		default:
			b.WriteString("  " + r.style.success("✓ "+label) + "\n")
		}
		b.WriteString(indentOutput(res.Output))
	}
	return b.String()
}

func indentOutput(output string) string {
	if output == "" {
		return ""
	}
	lines := strings.Split(output, "\n")

	var b strings.Builder
	shown := lines
	if len(lines) > maxOutputLines {
		shown = lines[:maxOutputLines]
	}
	for _, line := range shown {
		b.WriteString("      " + line + "\n")
	}
	if len(lines) > maxOutputLines {
		fmt.Fprintf(&b, "      ... (%d more lines)\n", len(lines)-maxOutputLines)
	}
	return b.String()
}

// Runs renders the run history, newest first.
func (r *Renderer) Runs(records []*runs.Record) string {
	var b strings.Builder
	b.WriteString(r.style.title("exozora runs") + "\n")
	b.WriteString(r.style.border(min(r.width, 62)) + "\n")

	if len(records) == 0 {
		b.WriteString(r.style.subtle("  no runs recorded") + "\n")
		return b.String()
	}

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		fmt.Fprintf(&b, "  %s  %-9s  %s  %d tasks  %s\n",
			rec.ShortID(),
			r.status(rec.Status),
			rec.CreatedAt.Format(time.DateTime),
			len(rec.Tasks),
			r.style.subtle(rec.Source),
		)
		if rec.Reason != "" {
			fmt.Fprintf(&b, "            %s\n", r.style.subtle(rec.Reason))
		}
	}
	return b.String()
}

func (r *Renderer) status(s runs.Status) string {
	text := fmt.Sprintf("%-9s", s)
	switch s {
	case runs.StatusCompleted, runs.StatusApproved:
		return r.style.success(text)
	case runs.StatusRejected, runs.StatusFailed:
		return r.style.failure(text)
	default:
		return r.style.warning(text)
	}
}
