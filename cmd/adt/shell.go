package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/config"
)

type shellCmd struct{}

func (s *shellCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively over one connection",
		Args:  cobra.NoArgs,
	}
}

func (s *shellCmd) run(cl *cli, cmd *cobra.Command, args []string) error {
	if _, err := cl.Dial(); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "adt:" + cl.profile.Name + "> ",
		HistoryFile:     filepath.Join(filepath.Dir(config.DefaultPath()), "history"),
		AutoComplete:    readline.NewPrefixCompleter(completions(cl.rootCmd)...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sh := &shell{parent: cl, rl: rl, out: rl.Stdout(), errOut: rl.Stderr()}
	return sh.Run(cmd.Context())
}

// lineReader is the part of readline the shell loop uses.
type lineReader interface {
	Readline() (string, error)
}

// shell runs command lines against the connection of its parent CLI.
type shell struct {
	parent *cli
	rl     lineReader
	out    io.Writer
	errOut io.Writer
}

// Run reads and executes lines until exit, EOF or ctx is done.
func (s *shell) Run(ctx context.Context) error {
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			if len(args) == 1 {
				s.printHelp()
				continue
			}
		case "profile":
			s.printProfile()
			continue
		case "shell":
			fmt.Fprintln(s.errOut, "Error: already in a shell")
			continue
		}

		if err := s.exec(ctx, args); err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
	}
}

// exec runs one command line on a fresh command tree sharing the
// connection, so flag values do not leak between lines.
func (s *shell) exec(ctx context.Context, args []string) error {
	child := newCLI()
	child.profile = s.parent.profile
	child.logger = s.parent.logger
	child.client = s.parent.client
	child.formatter = s.parent.formatter
	child.output = s.parent.output

	child.rootCmd.SetArgs(args)
	child.rootCmd.SetOut(s.out)
	child.rootCmd.SetErr(s.errOut)
	err := child.rootCmd.ExecuteContext(ctx)

	var ec exitCoder
	if errors.As(err, &ec) {
		// The report was printed; a failed test run does not end the shell.
		fmt.Fprintln(s.errOut, ec.Error())
		return nil
	}
	return err
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	for _, c := range s.parent.rootCmd.Commands() {
		if c.Name() == "shell" || c.Name() == "completion" || c.Hidden {
			continue
		}
		fmt.Fprintf(s.out, "  %-12s %s\n", c.Name(), c.Short)
	}
	fmt.Fprintf(s.out, "  %-12s %s\n", "profile", "Show the connection")
	fmt.Fprintf(s.out, "  %-12s %s\n", "exit", "Leave the shell")
	fmt.Fprintln(s.out, `Use "help <command>" or "<command> --help" for details.`)
}

func (s *shell) printProfile() {
	p := s.parent.profile
	fmt.Fprintf(s.out, "Profile:  %s\n", p.Name)
	fmt.Fprintf(s.out, "URL:      %s\n", s.parent.client.BaseURL())
	fmt.Fprintf(s.out, "User:     %s\n", p.User)
	if p.Client != "" {
		fmt.Fprintf(s.out, "Client:   %s\n", p.Client)
	}
	fmt.Fprintf(s.out, "Language: %s\n", p.Language)
}

// completions mirrors the command tree for tab completion. Commands that
// take an object kind complete the kinds.
func completions(cmd *cobra.Command) []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, sub := range cmd.Commands() {
		switch sub.Name() {
		case "shell", "help", "completion":
			continue
		}
		children := completions(sub)
		if strings.Contains(sub.Use, "KIND") {
			for _, k := range objectKinds {
				children = append(children, readline.PcItem(k))
			}
		}
		items = append(items, readline.PcItem(sub.Name(), children...))
	}
	items = append(items, readline.PcItem("profile"), readline.PcItem("exit"), readline.PcItem("help"))
	return items
}

// splitArgs splits a line at spaces. Double quotes group words.
func splitArgs(line string) ([]string, error) {
	var (
		args   []string
		cur    strings.Builder
		quoted bool
		inWord bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case (r == ' ' || r == '\t') && !quoted:
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
