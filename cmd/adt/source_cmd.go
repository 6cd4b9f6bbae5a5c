package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/client"
	"github.com/adt-protocol/adt-go/pkg/objects"
)

func newSourceCmd() *group {
	return &group{
		cmd: &cobra.Command{
			Use:   "source",
			Short: "Read and write ABAP source",
		},
		subs: []command{&sourceReadCmd{}, &sourceWriteCmd{}},
	}
}

type sourceReadCmd struct {
	include string
}

func (s *sourceReadCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read KIND NAME",
		Short: "Print the source of an object",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVar(&s.include, "include", "", "class include (definitions, implementations, macros, testclasses)")
	return cmd
}

func (s *sourceReadCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	c, err := cl.Dial()
	if err != nil {
		return err
	}
	obj, err := newObject(args[0], args[1], objects.WithVersion(cl.profile.Version))
	if err != nil {
		return err
	}

	var src string
	if s.include != "" {
		class, ok := obj.(*objects.Class)
		if !ok {
			return fmt.Errorf("--include applies to classes only")
		}
		src, err = c.ReadInclude(cmd.Context(), class, s.include)
	} else {
		src, err = c.ReadSource(cmd.Context(), obj)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), src)
	return err
}

type sourceWriteCmd struct {
	transport string
	activate  bool
}

func (s *sourceWriteCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write KIND NAME FILE",
		Short: "Replace the source of an object with the contents of FILE (- for stdin)",
		Args:  cobra.ExactArgs(3),
	}
	cmd.Flags().StringVar(&s.transport, "transport", "", "transport request (default from lock or profile)")
	cmd.Flags().BoolVar(&s.activate, "activate", false, "activate the object after writing")
	return cmd
}

func (s *sourceWriteCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	var src []byte
	var err error
	if args[2] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(args[2])
	}
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	c, err := cl.Dial()
	if err != nil {
		return err
	}
	obj, err := newObject(args[0], args[1], objects.WithVersion(cl.profile.Version))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := writeSource(ctx, c, obj, string(src), cl.transport(s.transport)); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s\n", obj.URI())

	if !s.activate {
		return nil
	}
	res, err := c.Activate(ctx, obj)
	if err != nil {
		return err
	}
	fmt.Fprint(out, cl.Formatter().Activation(res))
	if !res.OK() {
		return errFailed{what: "activation failed"}
	}
	return nil
}

// writeSource locks obj, replaces its source and releases the lock.
func writeSource(ctx context.Context, c *client.Client, obj objects.Object, src, transport string) (retErr error) {
	lock, err := c.Lock(ctx, obj)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Unlock(context.WithoutCancel(ctx), obj, lock.Handle()); err != nil && retErr == nil {
			retErr = err
		}
	}()

	if transport == "" && !lock.IsLocal() {
		transport = lock.Transport()
	}
	return c.WriteSource(ctx, obj, src, lock.Handle(), transport)
}
