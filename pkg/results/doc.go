// Package results parses recursive ADT result documents into trees.
//
// Test runs, coverage reports, ATC worklists and transport listings share
// one shape: a tree of a few node kinds of unbounded depth, where
// measurements belong to whichever node is current. A Grammar names the
// node tags, the leaf tags and the attributes to keep; Parse does the rest.
//
//	root, err := results.Parse(data, results.AUnitGrammar)
//	for _, m := range root.Find("testMethod") {
//		fmt.Println(m.Name(), results.MethodStatus(m))
//	}
//
// Elements the grammar does not mention are skipped, but still have to nest
// properly: a closing tag that does not match the innermost open element
// stops the parse with a *StructureError.
package results
