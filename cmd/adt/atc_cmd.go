package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/client"
	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/results"
)

func newATCCmd() *group {
	return &group{
		cmd: &cobra.Command{
			Use:   "atc",
			Short: "Run ABAP Test Cockpit checks",
		},
		subs: []command{&atcRunCmd{}, &atcWorklistCmd{}},
	}
}

type atcRunCmd struct {
	variant     string
	maxPriority int
}

func (a *atcRunCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run KIND NAME...",
		Short: "Check objects and show the findings",
		Args:  cobra.MinimumNArgs(2),
	}
	cmd.Flags().StringVar(&a.variant, "variant", client.DefaultCheckVariant, "check variant")
	cmd.Flags().IntVar(&a.maxPriority, "fail-priority", 1, "exit with status 2 on findings of priority 1 up to this value (0 never fails)")
	return cmd
}

func (a *atcRunCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	if err := cl.checkOutput(outputText, outputJSON); err != nil {
		return err
	}
	c, err := cl.Dial()
	if err != nil {
		return err
	}
	objs, err := objectsFromArgs(args, objects.WithVersion(cl.profile.Version))
	if err != nil {
		return err
	}

	root, err := c.RunChecks(cmd.Context(), a.variant, client.References(objs...)...)
	if err != nil {
		return err
	}
	if err := cl.render(cmd.OutOrStdout(), root, cl.Formatter().ATC); err != nil {
		return err
	}
	return findingsOutcome(root, a.maxPriority)
}

type atcWorklistCmd struct {
	maxPriority int
}

func (a *atcWorklistCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklist ID",
		Short: "Show the findings of an existing worklist",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().IntVar(&a.maxPriority, "fail-priority", 0, "exit with status 2 on findings of priority 1 up to this value (0 never fails)")
	return cmd
}

func (a *atcWorklistCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	if err := cl.checkOutput(outputText, outputJSON); err != nil {
		return err
	}
	c, err := cl.Dial()
	if err != nil {
		return err
	}
	root, err := c.ATCWorklist(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := cl.render(cmd.OutOrStdout(), root, cl.Formatter().ATC); err != nil {
		return err
	}
	return findingsOutcome(root, a.maxPriority)
}

func findingsOutcome(root *results.Node, maxPriority int) error {
	if maxPriority <= 0 {
		return nil
	}
	if n := len(results.AtMost(root, maxPriority)); n > 0 {
		return errFailed{what: fmt.Sprintf("%d findings of priority %d or higher", n, maxPriority)}
	}
	return nil
}
