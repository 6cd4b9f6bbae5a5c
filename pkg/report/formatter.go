// Package report renders ADT results for people and for CI systems.
package report

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/results"
)

// Formatter renders result trees as indented text.
type Formatter struct {
	// Profile selects the color capabilities. termenv.Ascii disables colors.
	Profile termenv.Profile

	// ShowAttributes appends the copied attributes of each node to Tree output.
	ShowAttributes bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a Formatter for the color profile of stdout.
func NewFormatter() *Formatter {
	return &Formatter{
		Profile:     termenv.ColorProfile(),
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

func (f *Formatter) color(s, hex string) string {
	return f.Profile.String(s).Foreground(f.Profile.Color(hex)).String()
}

func (f *Formatter) bold(s string) string {
	return f.Profile.String(s).Bold().String()
}

// Status renders a test status label.
func (f *Formatter) Status(s results.Status) string {
	switch s {
	case results.StatusPassed:
		return f.color("PASS", "#22c55e")
	case results.StatusWarning:
		return f.color("WARN", "#eab308")
	default:
		return f.color("FAIL", "#ef4444")
	}
}

// Priority renders an ATC priority label.
func (f *Formatter) Priority(p int) string {
	label := fmt.Sprintf("P%d", p)
	switch p {
	case 1:
		return f.color(label, "#ef4444")
	case 2:
		return f.color(label, "#eab308")
	default:
		return label
	}
}

// Tree renders any result tree, one node per line.
func (f *Formatter) Tree(root *results.Node) string {
	var sb strings.Builder
	root.Walk(func(n *results.Node) bool {
		depth := 0
		if n != root {
			depth = n.Depth() + 1
		}
		line := n.Kind()
		if n.Name() != "" {
			line += " " + f.bold(n.Name())
		}
		if f.ShowAttributes {
			for _, a := range n.Attrs() {
				line += fmt.Sprintf(" %s=%q", a.Name, a.Value)
			}
		}
		sb.WriteString(f.Indent(depth, line) + "\n")
		for _, v := range n.Values() {
			val := v.Kind
			if v.Text != "" {
				val += ": " + v.Text
			}
			for _, a := range v.Attrs {
				val += fmt.Sprintf(" %s=%q", a.Name, a.Value)
			}
			sb.WriteString(f.Indent(depth+1, "- "+val) + "\n")
		}
		return true
	})
	return sb.String()
}

// AUnit renders a test run with one line per method and the alerts of
// failing methods, followed by a summary.
func (f *Formatter) AUnit(root *results.Node) string {
	var sb strings.Builder
	root.Walk(func(n *results.Node) bool {
		switch n.Kind() {
		case "program":
			sb.WriteString(f.bold(n.Name()) + "\n")
		case "testClass":
			sb.WriteString(f.Indent(1, n.Name()) + "\n")
			for _, a := range results.Alerts(n) {
				sb.WriteString(f.Indent(2, f.Status(results.AlertStatus(a))+" "+results.AlertTitle(a)) + "\n")
			}
		case "testMethod":
			line := f.Status(results.MethodStatus(n)) + " " + n.Name()
			if t := n.Attr("executionTime"); t != "" {
				line += fmt.Sprintf(" (%s%s)", t, n.Attr("unit"))
			}
			sb.WriteString(f.Indent(2, line) + "\n")
			for _, a := range results.Alerts(n) {
				sb.WriteString(f.Indent(3, results.AlertTitle(a)) + "\n")
				for _, d := range a.ValuesOf("detail") {
					sb.WriteString(f.Indent(4, d.Attr("text")) + "\n")
				}
			}
			return false
		}
		return true
	})

	s := results.Summarize(root)
	fmt.Fprintf(&sb, "\n%d methods: %d passed, %d warnings, %d failed",
		s.Methods, s.Passed(), s.Warnings, s.Failed)
	if s.Errors > 0 {
		fmt.Fprintf(&sb, ", %d errors", s.Errors)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Coverage renders the measures of every coverage node.
func (f *Formatter) Coverage(root *results.Node) string {
	var sb strings.Builder
	root.Walk(func(n *results.Node) bool {
		if n.Kind() != "node" {
			return true
		}
		line := n.Name()
		if t := results.ObjectType(n); t != "" {
			line += " [" + t + "]"
		}
		for _, m := range results.Measures(n) {
			line += fmt.Sprintf("  %s %s", m.Type, f.percent(m.Percent()))
		}
		sb.WriteString(f.Indent(n.Depth(), line) + "\n")
		return true
	})
	return sb.String()
}

func (f *Formatter) percent(p float64) string {
	s := fmt.Sprintf("%.1f%%", p)
	switch {
	case p >= 80:
		return f.color(s, "#22c55e")
	case p >= 50:
		return f.color(s, "#eab308")
	default:
		return f.color(s, "#ef4444")
	}
}

// ATC renders findings grouped by object.
func (f *Formatter) ATC(root *results.Node) string {
	var sb strings.Builder
	for _, obj := range root.Find("object") {
		findings := obj.Find("finding")
		if len(findings) == 0 {
			continue
		}
		sb.WriteString(f.bold(obj.Name()) + "\n")
		for _, fd := range findings {
			line := f.Priority(results.Priority(fd)) + " " + fd.Name()
			if msg := fd.Attr("atcfinding:messageTitle"); msg != "" {
				line += ": " + msg
			}
			sb.WriteString(f.Indent(1, line) + "\n")
		}
	}
	counts := results.FindingsByPriority(root)
	fmt.Fprintf(&sb, "\n%d findings (P1 %d, P2 %d, P3 %d)\n",
		len(root.Find("finding")), counts[1], counts[2], counts[3])
	return sb.String()
}

// Transports renders requests with their tasks and objects.
func (f *Formatter) Transports(root *results.Node) string {
	var sb strings.Builder
	root.Walk(func(n *results.Node) bool {
		switch n.Kind() {
		case "request", "task":
			depth := 0
			if n.Kind() == "task" {
				depth = 1
			}
			line := fmt.Sprintf("%s %s %s", f.bold(n.Name()), n.Attr("tm:owner"), results.Description(n))
			sb.WriteString(f.Indent(depth, strings.TrimSpace(line)) + "\n")
		case "object":
			depth := 1
			if p := n.Parent(); p != nil && p.Kind() == "task" {
				depth = 2
			}
			sb.WriteString(f.Indent(depth, n.Attr("tm:pgmid")+" "+n.Attr("tm:type")+" "+n.Name()) + "\n")
		}
		return true
	})
	return sb.String()
}

// Activation renders the messages of an activation.
func (f *Formatter) Activation(r *objects.ActivationResult) string {
	if r.OK() && len(r.Messages()) == 0 {
		return f.color("activated", "#22c55e") + "\n"
	}
	var sb strings.Builder
	for _, m := range r.Messages() {
		sev := m.Severity()
		if m.IsError() {
			sev = f.color(sev, "#ef4444")
		}
		line := fmt.Sprintf("%s %s", sev, m.Text())
		if m.Line() > 0 {
			line += fmt.Sprintf(" (%s line %d)", m.ObjectDescription(), m.Line())
		}
		sb.WriteString(line + "\n")
	}
	if !r.OK() {
		sb.WriteString(f.color("activation failed", "#ef4444") + "\n")
	}
	return sb.String()
}
