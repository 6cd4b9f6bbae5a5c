package main

import (
	"github.com/spf13/cobra"
)

func newCTSCmd() *group {
	return &group{
		cmd: &cobra.Command{
			Use:   "cts",
			Short: "Inspect transport requests",
		},
		subs: []command{&ctsListCmd{}},
	}
}

type ctsListCmd struct {
	user string
}

func (l *ctsListCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the modifiable transport requests of a user",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&l.user, "user", "", "owner of the requests (default: the logged-on user)")
	return cmd
}

func (l *ctsListCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	if err := cl.checkOutput(outputText, outputJSON); err != nil {
		return err
	}
	c, err := cl.Dial()
	if err != nil {
		return err
	}
	root, err := c.TransportRequests(cmd.Context(), l.user)
	if err != nil {
		return err
	}
	return cl.render(cmd.OutOrStdout(), root, cl.Formatter().Transports)
}
