package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Render writes doc to w in the given format.
func Render(w io.Writer, format Format, doc *Document) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return enc.Close()
	case TOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode toml report: %w", err)
		}
		return nil
	case Text, "":
		return renderText(w, doc)
	}
	return fmt.Errorf("unknown report format %q", format)
}

// styles are bound to the destination writer so color is only emitted on a
// terminal.
type styles struct {
	heading lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	faint   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		faint:   r.NewStyle().Faint(true),
	}
}

func renderText(w io.Writer, doc *Document) error {
	st := newStyles(w)
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", st.heading.Render("Workflow:"), doc.Workflow)
	if doc.RunID != "" {
		fmt.Fprintf(&b, "%s\n", st.faint.Render("run "+doc.RunID))
	}
	b.WriteString("\n")

	if doc.graph != nil {
		b.WriteString(doc.graph.Visualize())
		s := doc.Plan.Stats
		fmt.Fprintf(&b, "\nComplexity: %.2f  Fingerprint: %s\n", s.Complexity, s.Fingerprint)
	}

	if len(doc.Errors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.fail.Render(fmt.Sprintf("Errors (%d):", len(doc.Errors))))
		for _, e := range doc.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	if len(doc.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.warn.Render(fmt.Sprintf("Warnings (%d):", len(doc.Warnings))))
		for _, wr := range doc.Warnings {
			fmt.Fprintf(&b, "  - %s\n", wr)
		}
	}

	if ex := doc.Execution; ex != nil {
		status := st.ok.Render(ex.Status)
		if ex.Status == StatusAborted {
			status = st.fail.Render(ex.Status)
		}
		fmt.Fprintf(&b, "\n%s %s in %s (%s)\n", st.heading.Render("Execution:"), status, ex.Duration, ex.Mode)
		for _, o := range ex.Outcomes {
			tag := st.ok.Render("OK")
			switch {
			case o.Tolerated:
				tag = st.warn.Render("WARN")
			case !o.Success:
				tag = st.fail.Render("FAIL")
			}
			fmt.Fprintf(&b, "  %s %s rc=%d %s", tag, o.Node, o.ReturnCode, st.faint.Render(o.Duration))
			if o.Error != "" {
				fmt.Fprintf(&b, " %s", o.Error)
			}
			b.WriteString("\n")
		}
		for _, id := range ex.Skipped {
			fmt.Fprintf(&b, "  %s %s\n", st.faint.Render("SKIP"), id)
		}
		fmt.Fprintf(&b, "Summary: %d succeeded, %d failed, %d skipped\n", ex.Succeeded, ex.Failed, len(ex.Skipped))
	} else if doc.DryRun {
		fmt.Fprintf(&b, "\n%s\n", st.faint.Render("Dry run: nothing was executed."))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
