package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dormscore/app"
	"dormscore/internal/config"
	"dormscore/internal/container"
	"dormscore/internal/errors"
	"dormscore/internal/logging"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitEmpty    = 2
	exitConflict = 3
)

type options struct {
	folder          string
	email           string
	pdf             bool
	overwrite       bool
	pdfOnly         bool
	clean           bool
	acceptAnomalies bool
	output          string
	logLevel        string
	timeout         time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and maps its error to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(joinBoolValues(cmd, args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// joinBoolValues rewrites "--pdf false" as "--pdf=false" for boolean flags so
// the value may follow as a separate token. The command takes no positional
// arguments, so a boolean literal after a boolean flag is always its value.
func joinBoolValues(cmd *cobra.Command, args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if isBoolFlag(cmd, arg) && i+1 < len(args) {
			if _, err := strconv.ParseBool(args[i+1]); err == nil {
				out = append(out, arg+"="+args[i+1])
				i++
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}

func isBoolFlag(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	flags := cmd.Flags()
	switch {
	case strings.HasPrefix(arg, "--"):
		f := flags.Lookup(strings.TrimPrefix(arg, "--"))
		return f != nil && f.Value.Type() == "bool"
	case strings.HasPrefix(arg, "-") && len(arg) == 2:
		f := flags.ShorthandLookup(arg[1:])
		return f != nil && f.Value.Type() == "bool"
	}
	return false
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.HasCode(err, errors.CodeEmptyInput):
		return exitEmpty
	case errors.HasCode(err, errors.CodeOutputExists):
		return exitConflict
	default:
		return exitFailure
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dormscore",
		Short: "Build the weekly dormitory hygiene score report",
		Long: `Merge the WeekScoreManage_*.csv exports of a folder into one paginated,
print-ready workbook named after the building and week, optionally converting it
to PDF and removing the consumed exports.

Example: dormscore --folder ./week7 --email zhangsan --pdf --clean`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logging.SetDefaultCLILogger(cfg.Log.Level)
			return run(cmd.Context(), cfg, opts, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.folder, "folder", ".", "Folder holding the exports and receiving the report")
	flags.StringVar(&opts.email, "email", "xxx", "Contact mailbox local-part printed in the banner")
	flags.BoolVar(&opts.pdf, "pdf", false, "Also produce a PDF of the report")
	flags.BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing report")
	flags.BoolVar(&opts.pdfOnly, "pdfOnly", false, "Skip ingestion and convert the existing workbooks of the folder")
	flags.BoolVar(&opts.clean, "clean", false, "Remove the consumed exports after a successful run")
	flags.BoolVarP(&opts.acceptAnomalies, "accept-anomalies", "y", false, "Convert and clean even when the report has empty cells")
	flags.StringVarP(&opts.output, "output", "o", config.FormatText, "Summary format: text, json, yaml, markdown or html")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "PDF conversion timeout")

	return cmd
}

// loadConfig reads .env and the environment, then applies explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("folder") {
		cfg.Input.Folder = opts.folder
	}
	if flags.Changed("email") {
		cfg.Report.ContactLocalPart = opts.email
	}
	if flags.Changed("output") {
		cfg.Log.OutputFormat = opts.output
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("timeout") {
		cfg.Office.Timeout = opts.timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, opts *options, stdout io.Writer) error {
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	svc := c.ReportService

	if opts.pdfOnly {
		res, err := svc.ConvertExisting(ctx, cfg.Input.Folder, opts.overwrite)
		if err != nil {
			return err
		}
		return writeSummary(stdout, cfg.Log.OutputFormat, res)
	}

	res, err := svc.Run(ctx, app.RunRequest{
		Folder:          cfg.Input.Folder,
		PDF:             opts.pdf,
		Overwrite:       opts.overwrite,
		Clean:           opts.clean,
		AcceptAnomalies: opts.acceptAnomalies,
	})
	if err != nil {
		return err
	}
	slog.Debug("run finished", "run", res.RunID.String(), "duration", res.Duration)
	return writeSummary(stdout, cfg.Log.OutputFormat, res)
}
