package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/containerd/errdefs"

	"github.com/adt-protocol/adt-go/pkg/objects"
)

const lockAccept = "application/vnd.sap.as+xml;charset=UTF-8;dataname=com.sap.adt.lock.result;q=0.8, " +
	"application/vnd.sap.as+xml;charset=UTF-8;dataname=com.sap.adt.lock.result2;q=0.9"

// collectionURI returns the URI obj is created under.
func collectionURI(obj objects.Object) string {
	return objects.ServicePath + obj.Descriptor().Basepath
}

func transportQuery(transport string) url.Values {
	q := url.Values{}
	if transport != "" {
		q.Set("corrNr", transport)
	}
	return q
}

// Create creates obj on the service. Objects outside local packages need
// a transport request.
func (c *Client) Create(ctx context.Context, obj objects.Object, transport string) error {
	if obj.Name() == "" {
		return errdefs.ErrInvalidArgument.WithMessage("object name cannot be blank")
	}
	_, err := c.postObject(ctx, collectionURI(obj), transportQuery(transport), obj, nil)
	return err
}

// Fetch reads the properties of obj from the service into obj.
func (c *Client) Fetch(ctx context.Context, obj objects.Object) error {
	hdr := http.Header{}
	hdr.Set("Accept", strings.Join(obj.Descriptor().MIMETypes, ", "))
	resp, err := c.get(ctx, obj.URI(), nil, hdr)
	if err != nil {
		return err
	}
	return c.decodeInto(resp, obj)
}

// Delete deletes obj. The object must be locked with lockHandle.
func (c *Client) Delete(ctx context.Context, obj objects.Object, lockHandle, transport string) error {
	if lockHandle == "" {
		return errdefs.ErrInvalidArgument.WithMessage("lock handle cannot be blank")
	}
	q := transportQuery(transport)
	q.Set("lockHandle", lockHandle)
	_, err := c.delete(ctx, obj.URI(), q, nil)
	return err
}

// Lock locks obj for modification and switches the client to a stateful
// session, which the lock lives in.
func (c *Client) Lock(ctx context.Context, obj objects.Object) (*objects.LockResult, error) {
	c.SetStateful(true)

	q := url.Values{}
	q.Set("_action", "LOCK")
	q.Set("accessMode", "MODIFY")
	hdr := http.Header{}
	hdr.Set("Accept", lockAccept)
	resp, err := c.post(ctx, obj.URI(), q, nil, hdr)
	if err != nil {
		return nil, err
	}

	lock := objects.NewLockResult()
	if err := c.decodeInto(resp, lock); err != nil {
		return nil, err
	}
	if lock.Handle() == "" {
		return nil, c.decodeError(resp, errdefs.ErrUnknown.WithMessage("no lock handle in response"))
	}
	return lock, nil
}

// Unlock releases a lock taken with Lock.
func (c *Client) Unlock(ctx context.Context, obj objects.Object, lockHandle string) error {
	q := url.Values{}
	q.Set("_action", "UNLOCK")
	q.Set("lockHandle", lockHandle)
	_, err := c.post(ctx, obj.URI(), q, nil, nil)
	return err
}
