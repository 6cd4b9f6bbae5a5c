package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"

	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/schema"
)

type editable interface {
	objects.Object
	Editor() (schema.Editor, bool)
}

func editorOf(obj objects.Object) (schema.Editor, error) {
	e, ok := obj.(editable)
	if !ok {
		return schema.Editor{}, errdefs.ErrNotImplemented.WithMessage(fmt.Sprintf("%s has no source", obj.Name()))
	}
	ed, ok := e.Editor()
	if !ok {
		return schema.Editor{}, errdefs.ErrNotImplemented.WithMessage(fmt.Sprintf("%s has no source", obj.Name()))
	}
	return ed, nil
}

// ReadSource returns the source text of obj.
func (c *Client) ReadSource(ctx context.Context, obj objects.Object) (string, error) {
	ed, err := editorOf(obj)
	if err != nil {
		return "", err
	}
	return c.readText(ctx, ed)
}

// ReadInclude returns the source of one include of a class, such as
// objects.IncludeTestClasses.
func (c *Client) ReadInclude(ctx context.Context, class *objects.Class, kind string) (string, error) {
	ed, err := class.IncludeEditor(kind)
	if err != nil {
		return "", err
	}
	return c.readText(ctx, ed)
}

func (c *Client) readText(ctx context.Context, ed schema.Editor) (string, error) {
	hdr := http.Header{}
	hdr.Set("Accept", "text/plain")
	resp, err := c.get(ctx, ed.URI, nil, hdr)
	if err != nil {
		return "", err
	}
	return string(resp.body), nil
}

// WriteSource replaces the source text of obj. The object must be locked
// with lockHandle.
func (c *Client) WriteSource(ctx context.Context, obj objects.Object, source, lockHandle, transport string) error {
	if lockHandle == "" {
		return errdefs.ErrInvalidArgument.WithMessage("lock handle cannot be blank")
	}
	ed, err := editorOf(obj)
	if err != nil {
		return err
	}
	q := transportQuery(transport)
	q.Set("lockHandle", lockHandle)
	hdr := http.Header{}
	hdr.Set("Content-Type", ed.ContentType)
	_, err = c.put(ctx, ed.URI, q, []byte(source), hdr)
	return err
}
