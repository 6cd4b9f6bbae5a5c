package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/objects"
)

type activateCmd struct{}

func (a *activateCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "activate KIND NAME...",
		Short: "Activate objects",
		Args:  cobra.MinimumNArgs(2),
	}
}

// activationMessage is the JSON shape of an activation message.
type activationMessage struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
	Object   string `json:"object,omitempty"`
	Line     int    `json:"line,omitempty"`
}

func (a *activateCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
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

	res, err := c.Activate(cmd.Context(), objs...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cl.output == outputJSON {
		msgs := []activationMessage{}
		for _, m := range res.Messages() {
			msgs = append(msgs, activationMessage{
				Severity: m.Severity(),
				Text:     m.Text(),
				Object:   m.ObjectDescription(),
				Line:     m.Line(),
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"ok": res.OK(), "messages": msgs}); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, cl.Formatter().Activation(res))
	}

	if !res.OK() {
		return errFailed{what: "activation failed"}
	}
	return nil
}
