package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/client"
	"github.com/adt-protocol/adt-go/pkg/objects"
	"github.com/adt-protocol/adt-go/pkg/report"
	"github.com/adt-protocol/adt-go/pkg/results"
)

func newAUnitCmd() *group {
	return &group{
		cmd: &cobra.Command{
			Use:   "aunit",
			Short: "Run ABAP unit tests",
		},
		subs: []command{&aunitRunCmd{}},
	}
}

type aunitRunCmd struct {
	coverage  bool
	suiteName string
	harmless  bool
	dangerous bool
	critical  bool
}

func (a *aunitRunCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run KIND NAME...",
		Short: "Run the unit tests of objects",
		Args:  cobra.MinimumNArgs(2),
	}
	cmd.Flags().BoolVar(&a.coverage, "coverage", false, "measure statement coverage")
	cmd.Flags().StringVar(&a.suiteName, "junit-name", "adt", "name of the JUnit testsuites element")
	cmd.Flags().BoolVar(&a.harmless, "harmless", true, "run tests of risk level harmless")
	cmd.Flags().BoolVar(&a.dangerous, "dangerous", true, "run tests of risk level dangerous")
	cmd.Flags().BoolVar(&a.critical, "critical", true, "run tests of risk level critical")
	return cmd
}

func (a *aunitRunCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	if err := cl.checkOutput(outputText, outputJSON, outputJUnit); err != nil {
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
	refs := client.References(objs...)

	var run *client.TestRun
	if a.coverage {
		run, err = c.RunAUnitWithCoverage(cmd.Context(), refs...)
	} else {
		rc := objects.NewRunConfiguration(refs...)
		rc.SetRiskLevels(a.harmless, a.dangerous, a.critical)
		run = &client.TestRun{}
		run.Tests, err = c.RunAUnit(cmd.Context(), rc)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch cl.output {
	case outputJUnit:
		doc, err := report.JUnit(run.Tests, a.suiteName)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doc)
	case outputJSON:
		if err := report.WriteJSON(out, run.Tests); err != nil {
			return err
		}
		if run.Coverage != nil {
			if err := report.WriteJSON(out, run.Coverage); err != nil {
				return err
			}
		}
	default:
		f := cl.Formatter()
		fmt.Fprint(out, f.AUnit(run.Tests))
		if run.Coverage != nil {
			fmt.Fprintln(out)
			fmt.Fprint(out, f.Coverage(run.Coverage))
		}
	}

	return testOutcome(run.Tests)
}

// testOutcome returns errFailed when a test failed or a class raised an
// error.
func testOutcome(root *results.Node) error {
	s := results.Summarize(root)
	if s.Failed+s.Errors == 0 {
		return nil
	}
	return errFailed{what: fmt.Sprintf("%d of %d tests failed", s.Failed+s.Errors, s.Methods)}
}

type coverageCmd struct{}

func (cv *coverageCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage KIND NAME...",
		Short: "Run the unit tests of objects and show their statement coverage",
		Args:  cobra.MinimumNArgs(2),
	}
}

func (cv *coverageCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
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

	run, err := c.RunAUnitWithCoverage(cmd.Context(), client.References(objs...)...)
	if err != nil {
		return err
	}
	if run.Coverage == nil {
		return fmt.Errorf("the test run reported no coverage measurement")
	}
	return cl.render(cmd.OutOrStdout(), run.Coverage, cl.Formatter().Coverage)
}

// render writes root as JSON or with the text renderer.
func (c *cli) render(w io.Writer, root *results.Node, text func(*results.Node) string) error {
	if c.output == outputJSON {
		return report.WriteJSON(w, root)
	}
	_, err := io.WriteString(w, text(root))
	return err
}
