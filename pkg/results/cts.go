package results

// CTSGrammar reads tm:root transport listings.
var CTSGrammar = &Grammar{
	Name: "cts",
	Nodes: map[string]NodeRule{
		"tm:request": {
			Kind:     "request",
			NameAttr: "tm:number",
			Attrs:    []string{"tm:number", "tm:owner", "tm:desc", "tm:status", "tm:uri", "tm:type", "tm:target"},
		},
		"tm:task": {
			Kind:     "task",
			NameAttr: "tm:number",
			Attrs:    []string{"tm:number", "tm:parent", "tm:owner", "tm:desc", "tm:status", "tm:uri", "tm:type"},
		},
		"tm:abap_object": {
			Kind:     "object",
			NameAttr: "tm:name",
			Attrs:    []string{"tm:pgmid", "tm:type", "tm:name", "tm:wbtype", "tm:obj_desc", "tm:lock_status"},
		},
	},
	Leaves: map[string]LeafRule{
		"tm:long_desc": {Kind: "longDescription", Text: true},
	},
}

// ParseCTS parses a transport request listing.
func ParseCTS(data []byte) (*Node, error) {
	return Parse(data, CTSGrammar)
}

// Description returns the long description of a request, or its short
// description when none was sent.
func Description(n *Node) string {
	for _, v := range n.ValuesOf("longDescription") {
		if v.Text != "" {
			return v.Text
		}
	}
	return n.Attr("tm:desc")
}

// Owned returns the requests under root owned by user, including requests
// holding a task of user.
func Owned(root *Node, user string) []*Node {
	var out []*Node
	for _, r := range root.Find("request") {
		if r.Attr("tm:owner") == user {
			out = append(out, r)
			continue
		}
		for _, t := range r.Find("task") {
			if t.Attr("tm:owner") == user {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
