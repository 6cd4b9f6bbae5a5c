package client

import (
	"context"
	"net/http"
	"path"

	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/results"
	"github.com/adt-protocol/adt-go/pkg/schema"
)

// postForResult posts req and parses the answer with g.
func (c *Client) postForResult(ctx context.Context, uri string, req schema.Object, g *results.Grammar) (*results.Node, error) {
	m, err := objects.LoadManifest()
	if err != nil {
		return nil, err
	}
	hdr := http.Header{}
	hdr.Set("Accept", m.ResponseType(req.Schema().Descriptor()))
	resp, err := c.postObject(ctx, uri, nil, req, hdr)
	if err != nil {
		return nil, err
	}
	return c.parseResult(resp, g)
}

func (c *Client) parseResult(resp serverResponse, g *results.Grammar) (*results.Node, error) {
	root, err := results.Parse(resp.body, g)
	if err != nil {
		return nil, c.decodeError(resp, err)
	}
	return root, nil
}

// RunAUnit runs the unit tests selected by rc.
func (c *Client) RunAUnit(ctx context.Context, rc *objects.RunConfiguration) (*results.Node, error) {
	return c.postForResult(ctx, objects.ServicePath+rc.Schema().Descriptor().Basepath, rc, results.AUnitGrammar)
}

// Coverage reads the coverage tree of a measurement.
func (c *Client) Coverage(ctx context.Context, q *objects.CoverageQuery) (*results.Node, error) {
	uri, err := q.URI()
	if err != nil {
		return nil, err
	}
	return c.postForResult(ctx, uri, q, results.CoverageGrammar)
}

// TestRun is the outcome of RunAUnitWithCoverage.
type TestRun struct {
	Tests *results.Node
	// Coverage is nil when the run did not report a measurement.
	Coverage *results.Node
}

// RunAUnitWithCoverage runs the tests of refs with coverage measurement
// and reads the coverage of the same objects.
func (c *Client) RunAUnitWithCoverage(ctx context.Context, refs ...*objects.Reference) (*TestRun, error) {
	rc := objects.NewRunConfiguration(refs...)
	rc.SetCoverage(true)
	tests, err := c.RunAUnit(ctx, rc)
	if err != nil {
		return nil, err
	}

	run := &TestRun{Tests: tests}
	uri := results.CoverageURI(tests)
	if uri == "" {
		c.debugLog("test run reported no coverage measurement")
		return run, nil
	}
	run.Coverage, err = c.Coverage(ctx, objects.NewCoverageQuery(path.Base(uri), refs...))
	if err != nil {
		return nil, err
	}
	return run, nil
}
