package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/objects"
)

func newProgramCmd() *group {
	return &group{
		cmd: &cobra.Command{
			Use:   "program",
			Short: "Create and read ABAP programs",
		},
		subs: []command{&programCreateCmd{}, &programReadCmd{}},
	}
}

type programCreateCmd struct {
	pkg         string
	description string
	transport   string
}

func (p *programCreateCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a program",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&p.pkg, "package", "$TMP", "package of the new program")
	cmd.Flags().StringVar(&p.description, "description", "", "short description")
	cmd.Flags().StringVar(&p.transport, "transport", "", "transport request (default from profile)")
	return cmd
}

func (p *programCreateCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	c, err := cl.Dial()
	if err != nil {
		return err
	}

	desc := p.description
	if desc == "" {
		desc = args[0]
	}
	prog := objects.NewProgram(args[0],
		objects.WithVersion(cl.profile.Version),
		objects.WithPackage(p.pkg),
		objects.WithDescription(desc),
		objects.WithLanguage(cl.profile.Language),
		objects.WithResponsible(cl.profile.User),
	)
	if err := c.Create(cmd.Context(), prog, cl.transport(p.transport)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", prog.URI())
	return nil
}

type programReadCmd struct{}

func (p *programReadCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "read NAME",
		Short: "Show the properties of a program",
		Args:  cobra.ExactArgs(1),
	}
}

// programInfo is the JSON shape of a program.
type programInfo struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Package         string `json:"package,omitempty"`
	Responsible     string `json:"responsible,omitempty"`
	Version         string `json:"version,omitempty"`
	ChangedBy       string `json:"changed_by,omitempty"`
	ChangedAt       string `json:"changed_at,omitempty"`
	LanguageVersion string `json:"language_version,omitempty"`
	SourceURI       string `json:"source_uri,omitempty"`
}

func (p *programReadCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	if err := cl.checkOutput(outputText, outputJSON); err != nil {
		return err
	}
	c, err := cl.Dial()
	if err != nil {
		return err
	}

	prog := objects.NewProgram(args[0], objects.WithVersion(cl.profile.Version))
	if err := c.Fetch(cmd.Context(), prog); err != nil {
		return err
	}

	info := programInfo{
		Name:            prog.Name(),
		Description:     prog.Description(),
		Responsible:     prog.Responsible(),
		Version:         prog.Version(),
		ChangedBy:       prog.ChangedBy(),
		ChangedAt:       prog.ChangedAt(),
		LanguageVersion: prog.LanguageVersion(),
		SourceURI:       prog.SourceURI(),
	}
	if ref := prog.Package(); ref != nil {
		info.Package = ref.Name()
	}

	out := cmd.OutOrStdout()
	if cl.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "%s  %s\n", info.Name, info.Description)
	for _, row := range [][2]string{
		{"Package", info.Package},
		{"Responsible", info.Responsible},
		{"Version", info.Version},
		{"Changed", info.ChangedBy + " " + info.ChangedAt},
		{"Language version", info.LanguageVersion},
		{"Source", info.SourceURI},
	} {
		fmt.Fprintf(out, "  %-17s %s\n", row[0]+":", row[1])
	}
	return nil
}
