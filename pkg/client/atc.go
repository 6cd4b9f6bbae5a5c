package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/results"
)

const (
	worklistsPath  = objects.ServicePath + "atc/worklists"
	worklistAccept = "application/atc.worklist.v1+xml"

	// DefaultCheckVariant is the ATC check variant of a standard system.
	DefaultCheckVariant = "DEFAULT"
)

// CreateWorklist creates an ATC worklist for variant and returns its id.
func (c *Client) CreateWorklist(ctx context.Context, variant string) (string, error) {
	if variant == "" {
		variant = DefaultCheckVariant
	}
	q := url.Values{}
	q.Set("checkVariant", variant)
	hdr := http.Header{}
	hdr.Set("Accept", "text/plain")
	resp, err := c.post(ctx, worklistsPath, q, nil, hdr)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(resp.body))
	if id == "" {
		return "", c.decodeError(resp, errdefs.ErrUnknown.WithMessage("empty worklist id"))
	}
	return id, nil
}

// RunATC runs the checks of run on its worklist.
func (c *Client) RunATC(ctx context.Context, run *objects.ATCRun) error {
	if run.Worklist() == "" {
		return errdefs.ErrInvalidArgument.WithMessage("worklist id cannot be blank")
	}
	hdr := http.Header{}
	hdr.Set("Accept", "application/xml")
	_, err := c.postObject(ctx, run.URI(), nil, run, hdr)
	return err
}

// ATCWorklist reads the findings of a worklist.
func (c *Client) ATCWorklist(ctx context.Context, id string) (*results.Node, error) {
	q := url.Values{}
	q.Set("includeExemptedFindings", "false")
	hdr := http.Header{}
	hdr.Set("Accept", worklistAccept)
	resp, err := c.get(ctx, worklistsPath+"/"+url.PathEscape(id), q, hdr)
	if err != nil {
		return nil, err
	}
	return c.parseResult(resp, results.ATCGrammar)
}

// RunChecks creates a worklist for variant, runs it over refs and returns
// the findings.
func (c *Client) RunChecks(ctx context.Context, variant string, refs ...*objects.Reference) (*results.Node, error) {
	id, err := c.CreateWorklist(ctx, variant)
	if err != nil {
		return nil, err
	}
	if err := c.RunATC(ctx, objects.NewATCRun(id, refs...)); err != nil {
		return nil, err
	}
	return c.ATCWorklist(ctx, id)
}
