package results

import "strconv"

// ATCGrammar reads atcworklist:worklist documents.
var ATCGrammar = &Grammar{
	Name: "atc",
	Nodes: map[string]NodeRule{
		"atcworklist:worklist": {
			Kind:     "worklist",
			NameAttr: "atcworklist:id",
		},
		"atcobject:object": {
			Kind:     "object",
			NameAttr: "adtcore:name",
		},
		"atcfinding:finding": {
			Kind:     "finding",
			NameAttr: "atcfinding:checkTitle",
		},
	},
	Leaves: map[string]LeafRule{
		"atcworklist:objectSet": {Kind: "objectSet"},
		"atom:link":             {Kind: "link", Attrs: []string{"href", "rel", "type"}},
		"atcfinding:quickfixes": {Kind: "quickfixes"},
		"atcinfo:info":          {Kind: "info"},
		"atcinfo:description":   {Kind: "description", Text: true},
	},
}

// ParseATC parses an ATC worklist.
func ParseATC(data []byte) (*Node, error) {
	return Parse(data, ATCGrammar)
}

// Priority returns the priority of a finding, 0 when absent.
func Priority(finding *Node) int {
	p, _ := strconv.Atoi(finding.Attr("atcfinding:priority"))
	return p
}

// FindingsByPriority counts the findings under root per priority.
func FindingsByPriority(root *Node) map[int]int {
	out := make(map[int]int)
	for _, f := range root.Find("finding") {
		out[Priority(f)]++
	}
	return out
}

// AtMost returns the findings under root with priority 1..max.
func AtMost(root *Node, max int) []*Node {
	var out []*Node
	for _, f := range root.Find("finding") {
		if p := Priority(f); p > 0 && p <= max {
			out = append(out, f)
		}
	}
	return out
}
