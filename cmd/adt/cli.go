package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adt-protocol/adt-go/pkg/client"
	"github.com/adt-protocol/adt-go/pkg/config"
	"github.com/adt-protocol/adt-go/pkg/log"
	"github.com/adt-protocol/adt-go/pkg/report"
)

const userAgent = "adt-go"

// Output formats accepted by --output.
const (
	outputText  = "text"
	outputJSON  = "json"
	outputJUnit = "junit"
)

// exitCoder is an error that selects the process exit code.
type exitCoder interface {
	error
	ExitCode() int
}

// errFailed reports a command that ran but found failures, such as failing
// tests or blocking check findings.
type errFailed struct{ what string }

func (e errFailed) Error() string { return e.what }
func (e errFailed) ExitCode() int { return 2 }

// cli holds the root command and the connection shared by its subcommands.
type cli struct {
	rootCmd *cobra.Command

	// persistent flags
	configPath  string
	profileName string
	logLevel    string
	output      string
	protocolLog string
	logBodies   bool
	metricsFile string

	// lookupEnv reads environment overrides, os.LookupEnv outside tests.
	lookupEnv func(string) (string, bool)

	profile   config.Profile
	logger    *slog.Logger
	client    *client.Client
	metrics   *client.Metrics
	protoLog  *log.FileLogger
	formatter *report.Formatter
}

func newCLI() *cli {
	c := &cli{lookupEnv: os.LookupEnv}

	c.rootCmd = &cobra.Command{
		Use:           "adt",
		Short:         "adt is a command-line client for ABAP Development Tools services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := c.rootCmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "profiles file (default "+config.DefaultPath()+")")
	pf.StringVar(&c.profileName, "profile", "", "profile to connect with")
	pf.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVarP(&c.output, "output", "o", outputText, "output format (text, json, junit)")
	pf.StringVar(&c.protocolLog, "protocol-log", "", "append HTTP exchanges to this .alog file")
	pf.BoolVar(&c.logBodies, "protocol-log-bodies", true, "keep request and response bodies in the protocol log")
	pf.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	c.addCmd(newProgramCmd())
	c.addCmd(newSourceCmd())
	c.addCmd(&activateCmd{})
	c.addCmd(newAUnitCmd())
	c.addCmd(&coverageCmd{})
	c.addCmd(newATCCmd())
	c.addCmd(newCTSCmd())
	c.addCmd(&shellCmd{})

	return c
}

// Exec runs the command line and releases the connection resources.
func (c *cli) Exec(ctx context.Context) error {
	err := c.rootCmd.ExecuteContext(ctx)
	return errors.Join(err, c.Close())
}

// command is a leaf subcommand.
type command interface {
	registerFlags() *cobra.Command
	run(cl *cli, cmd *cobra.Command, args []string) error
}

// group is a subcommand holding leaf commands, such as "program".
type group struct {
	cmd  *cobra.Command
	subs []command
}

func (g *group) registerFlags() *cobra.Command { return g.cmd }
func (g *group) run(*cli, *cobra.Command, []string) error {
	return g.cmd.Help()
}

func (c *cli) addCmd(cmd command) {
	c.rootCmd.AddCommand(c.wire(cmd))
}

func (c *cli) wire(cmd command) *cobra.Command {
	cobraCmd := cmd.registerFlags()
	if g, ok := cmd.(*group); ok {
		for _, sub := range g.subs {
			cobraCmd.AddCommand(c.wire(sub))
		}
		return cobraCmd
	}
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	return cobraCmd
}

// Dial loads the profile and creates the client on first use.
func (c *cli) Dial() (*client.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := file.Resolve(c.profileName, c.lookupEnv)
	if err != nil {
		return nil, err
	}
	c.profile = p

	// Flags override the profile.
	if c.logLevel != "" {
		p.LogLevel = c.logLevel
	}
	if c.protocolLog == "" {
		c.protocolLog = p.ProtocolLog
	}
	if c.metricsFile == "" {
		c.metricsFile = p.MetricsFile
	}

	c.logger, err = newLogger(c.rootCmd.ErrOrStderr(), p.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []client.Opt{
		client.WithUserAgent(userAgent),
		client.WithBasicAuth(p.User, p.Password),
		client.WithSAPClient(p.Client),
		client.WithLanguage(p.Language),
		client.WithTimeout(p.Timeout),
		client.WithLogger(c.logger),
	}
	if p.Insecure {
		opts = append(opts, client.WithInsecureSkipVerify())
	}

	var loggers []log.Logger
	if c.protocolLog != "" {
		var fopts []log.FileOpt
		if !c.logBodies {
			fopts = append(fopts, log.WithoutBodies())
		}
		c.protoLog, err = log.NewFileLogger(c.protocolLog, fopts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open protocol log: %w", err)
		}
		loggers = append(loggers, c.protoLog)
	}
	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(c.logger))
	} else {
		loggers = append(loggers, log.Route(log.NewSlogAdapter(c.logger), log.Filter{FailuresOnly: true}))
	}
	opts = append(opts, client.WithProtocolLogger(log.NewMultiLogger(loggers...)))

	if c.metricsFile != "" {
		c.metrics = client.NewMetrics()
		opts = append(opts, client.WithMetrics(c.metrics))
	}

	c.client, err = client.New(p.URL, opts...)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Connected profile", "profile", p.Name, "url", c.client.BaseURL())
	return c.client, nil
}

// Close flushes metrics and closes the protocol log.
func (c *cli) Close() error {
	var errs []error
	if c.metrics != nil && c.metricsFile != "" {
		if err := c.metrics.WriteFile(c.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if c.protoLog != nil {
		events, exchanges := c.protoLog.Written()
		c.logger.Debug("Protocol log written", "path", c.protoLog.Path(), "events", events, "exchanges", exchanges)
		errs = append(errs, c.protoLog.Close())
		c.protoLog = nil
	}
	return errors.Join(errs...)
}

// Formatter returns the text formatter for the command output.
func (c *cli) Formatter() *report.Formatter {
	if c.formatter == nil {
		c.formatter = report.NewFormatter()
	}
	return c.formatter
}

// transport returns the transport flag value or the profile default.
func (c *cli) transport(flag string) string {
	if flag != "" {
		return flag
	}
	return c.profile.Transport
}

// checkOutput rejects output formats a command cannot produce.
func (c *cli) checkOutput(allowed ...string) error {
	for _, o := range allowed {
		if c.output == o {
			return nil
		}
	}
	return fmt.Errorf("unsupported output %q, use one of %s", c.output, strings.Join(allowed, ", "))
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if level != "" {
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
