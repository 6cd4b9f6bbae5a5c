package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/containerd/errdefs"

	"github.com/adt-protocol/adt-go/pkg/objects"
)

type referencer interface {
	ObjectReference() *objects.Reference
}

func referenceOf(obj objects.Object) *objects.Reference {
	if r, ok := obj.(referencer); ok {
		return r.ObjectReference()
	}
	return objects.NewReference("", obj.URI(), "", obj.Name())
}

// References returns object references for objs.
func References(objs ...objects.Object) []*objects.Reference {
	refs := make([]*objects.Reference, 0, len(objs))
	for _, o := range objs {
		refs = append(refs, referenceOf(o))
	}
	return refs
}

// Activate activates objs together. The returned result lists the
// messages of the activation; check OK before relying on the objects.
func (c *Client) Activate(ctx context.Context, objs ...objects.Object) (*objects.ActivationResult, error) {
	if len(objs) == 0 {
		return nil, errdefs.ErrInvalidArgument.WithMessage("nothing to activate")
	}
	refs := objects.NewObjectReferences(References(objs...)...)

	q := url.Values{}
	q.Set("method", "activate")
	q.Set("preauditRequested", "true")
	hdr := http.Header{}
	hdr.Set("Accept", "application/xml")
	resp, err := c.postObject(ctx, objects.ServicePath+refs.Schema().Descriptor().Basepath, q, refs, hdr)
	if err != nil {
		return nil, err
	}

	result := objects.NewActivationResult()
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return result, nil
	}
	if err := c.decodeInto(resp, result); err != nil {
		return nil, err
	}
	return result, nil
}
