package results

import "strconv"

// CoverageGrammar reads cov:result documents. A node is named by the
// object reference it covers.
var CoverageGrammar = &Grammar{
	Name: "coverage",
	Nodes: map[string]NodeRule{
		"node": {},
	},
	Leaves: map[string]LeafRule{
		"adtcore:objectReference": {
			Kind:     "object",
			Attrs:    []string{"adtcore:uri", "adtcore:type", "adtcore:name"},
			NameAttr: "adtcore:name",
		},
		"coverage": {Attrs: []string{"type", "total", "executed"}},
	},
}

// ParseCoverage parses a coverage measurement result.
func ParseCoverage(data []byte) (*Node, error) {
	return Parse(data, CoverageGrammar)
}

// Measure is one coverage figure of a node.
type Measure struct {
	Type     string
	Total    int
	Executed int
}

// Percent returns the executed share in percent.
func (m Measure) Percent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Executed) * 100 / float64(m.Total)
}

// Measures returns the coverage figures of n.
func Measures(n *Node) []Measure {
	var out []Measure
	for _, v := range n.ValuesOf("coverage") {
		total, _ := strconv.Atoi(v.Attr("total"))
		executed, _ := strconv.Atoi(v.Attr("executed"))
		out = append(out, Measure{Type: v.Attr("type"), Total: total, Executed: executed})
	}
	return out
}

// ObjectType returns the type of the object a coverage node covers.
func ObjectType(n *Node) string {
	for _, v := range n.ValuesOf("object") {
		return v.Attr("adtcore:type")
	}
	return ""
}
