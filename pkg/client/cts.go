package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/results"
)

const (
	transportsPath   = objects.ServicePath + "cts/transportrequests"
	transportsAccept = "application/vnd.sap.adt.transportorganizertree.v1+xml"
)

// TransportRequests returns the transport organizer tree of user. An
// empty user lists the requests of the logged-on user.
func (c *Client) TransportRequests(ctx context.Context, user string) (*results.Node, error) {
	q := url.Values{}
	if user == "" {
		user = c.user
	}
	if user != "" {
		q.Set("user", strings.ToUpper(user))
	}
	q.Set("targets", "true")
	hdr := http.Header{}
	hdr.Set("Accept", transportsAccept)
	resp, err := c.get(ctx, transportsPath, q, hdr)
	if err != nil {
		return nil, err
	}
	return c.parseResult(resp, results.CTSGrammar)
}
