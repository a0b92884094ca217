package workload

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	labelPass = "PASS"
	labelFail = "FAIL"
	labelErr  = "ERROR"
	labelNone = "-"

	durationDigits = 2
)

// RenderOptions controls report output.
type RenderOptions struct {
	// Color enables ANSI colors.
	Color bool
	// Events adds a column with each step's change events.
	Events bool
}

// palette holds the colorizers for one render.
type palette struct {
	pass, fail, warn, faint func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		return c.SprintFunc()
	}

	return palette{
		pass:  mk(color.FgGreen),
		fail:  mk(color.FgRed, color.Bold),
		warn:  mk(color.FgYellow),
		faint: mk(color.Faint),
	}
}

// Render writes the step table, a diff for every mismatched step, and a summary line.
func (r *Report) Render(w io.Writer, opts RenderOptions) error {
	p := newPalette(opts.Color)

	var sb strings.Builder

	sb.WriteString(r.table(p, opts))
	sb.WriteString("\n")

	for _, s := range r.Failures() {
		sb.WriteString(r.failure(p, s, opts.Color))
	}

	sb.WriteString(r.summary(p))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func (r *Report) table(p palette, opts RenderOptions) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	header := table.Row{"#", "op", "argument", "outcome", "expected", "result"}
	if opts.Events {
		header = append(header, "events")
	}

	tbl.AppendHeader(header)

	for _, s := range r.Steps {
		row := table.Row{s.Index, string(s.Op), s.Arg, s.Outcome, expectedCell(s), resultCell(p, s)}
		if opts.Events {
			row = append(row, strings.Join(s.Events, "\n"))
		}

		tbl.AppendRow(row)
	}

	tbl.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("%d steps", len(r.Steps))})

	return tbl.Render()
}

func expectedCell(s StepResult) string {
	if !s.Checked {
		return labelNone
	}

	return s.Expected
}

func resultCell(p palette, s StepResult) string {
	switch {
	case s.Err != nil:
		return p.warn(labelErr)
	case !s.Checked:
		return p.faint(labelNone)
	case s.Passed():
		return p.pass(labelPass)
	default:
		return p.fail(labelFail)
	}
}

func (r *Report) failure(p palette, s StepResult, colored bool) string {
	title := fmt.Sprintf("step %d (line %d) %s %s", s.Index, s.Line, s.Op, s.Arg)

	if s.Err != nil {
		return fmt.Sprintf("%s %s\n  %v\n\n", p.warn(labelErr), title, s.Err)
	}

	return fmt.Sprintf("%s %s\n  want: %s\n  got:  %s\n  diff: %s\n\n",
		p.fail(labelFail), title, s.Expected, s.Outcome, Diff(s.Expected, s.Outcome, colored))
}

func (r *Report) summary(p palette) string {
	failed := len(r.Failures())

	verdict := p.pass(labelPass)
	if failed > 0 {
		verdict = p.fail(labelFail)
	}

	return fmt.Sprintf("%s %s: %s steps, %s failed, %s change events, %s intervals stored, %s",
		verdict,
		r.Domain,
		humanize.Comma(int64(len(r.Steps))),
		strconv.Itoa(failed),
		humanize.Comma(int64(r.Events)),
		humanize.Comma(int64(r.Size)),
		humanize.SIWithDigits(r.Duration.Seconds(), durationDigits, "s"),
	)
}

// Diff renders the character diff turning want into got. Without color,
// deletions are shown as [-text-] and insertions as {+text+}.
func Diff(want, got string, colored bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))

	if colored {
		return dmp.DiffPrettyText(diffs)
	}

	var sb strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}

	return sb.String()
}
