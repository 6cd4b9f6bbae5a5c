package results

// AUnitGrammar reads aunit:runResult documents.
var AUnitGrammar = &Grammar{
	Name: "aunit",
	Nodes: map[string]NodeRule{
		"program":    {NameAttr: "adtcore:name"},
		"testClass":  {NameAttr: "adtcore:name"},
		"testMethod": {NameAttr: "adtcore:name"},
		"alert":      {Attrs: []string{"kind", "severity"}},
	},
	Leaves: map[string]LeafRule{
		"title":      {Text: true},
		"detail":     {Attrs: []string{"text"}},
		"stackEntry": {Attrs: []string{"adtcore:uri", "adtcore:type", "adtcore:name", "description"}},
		"coverage":   {Attrs: []string{"adtcore:uri"}},
	},
}

// ParseAUnit parses an AUnit run result.
func ParseAUnit(data []byte) (*Node, error) {
	return Parse(data, AUnitGrammar)
}

// CoverageURI returns the measurement URI of a run with coverage enabled.
func CoverageURI(root *Node) string {
	var uri string
	root.Walk(func(n *Node) bool {
		if uri != "" {
			return false
		}
		if v := n.ValuesOf("coverage"); len(v) > 0 {
			uri = v[0].Attr("adtcore:uri")
		}
		return uri == ""
	})
	return uri
}

// Status is the outcome of a test method.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// AlertStatus classifies an alert by its severity.
func AlertStatus(alert *Node) Status {
	switch alert.Attr("severity") {
	case "critical", "fatal":
		return StatusFailed
	case "tolerable", "tolerant":
		return StatusWarning
	}
	return StatusFailed
}

// MethodStatus returns the worst status among the alerts of n.
func MethodStatus(n *Node) Status {
	status := StatusPassed
	for _, a := range n.children {
		if a.kind != "alert" {
			continue
		}
		switch AlertStatus(a) {
		case StatusFailed:
			return StatusFailed
		case StatusWarning:
			status = StatusWarning
		}
	}
	return status
}

// Alerts returns the alerts attached directly to n.
func Alerts(n *Node) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == "alert" {
			out = append(out, c)
		}
	}
	return out
}

// AlertTitle returns the title of an alert.
func AlertTitle(alert *Node) string {
	for _, v := range alert.ValuesOf("title") {
		return v.Text
	}
	return ""
}

// AUnitSummary counts the outcome of a test run.
type AUnitSummary struct {
	Programs int
	Classes  int
	Methods  int
	Failed   int
	Warnings int
	// Errors counts alerts raised outside of test methods, such as
	// failing class setup.
	Errors int
}

// Passed returns the number of methods without failures or warnings.
func (s AUnitSummary) Passed() int {
	return s.Methods - s.Failed - s.Warnings
}

// Summarize counts programs, classes and method outcomes under root.
func Summarize(root *Node) AUnitSummary {
	var s AUnitSummary
	root.Walk(func(n *Node) bool {
		switch n.kind {
		case "program":
			s.Programs++
		case "testClass":
			s.Classes++
		case "testMethod":
			s.Methods++
			switch MethodStatus(n) {
			case StatusFailed:
				s.Failed++
			case StatusWarning:
				s.Warnings++
			}
		case "alert":
			if p := n.parent; p != nil && p.kind != "testMethod" && AlertStatus(n) == StatusFailed {
				s.Errors++
			}
		}
		return true
	})
	return s
}
