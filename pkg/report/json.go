package report

import (
	"encoding/json"
	"io"

	"github.com/adt-protocol/adt-go/pkg/results"
)

// WriteJSON writes root as indented JSON.
func WriteJSON(w io.Writer, root *results.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}
