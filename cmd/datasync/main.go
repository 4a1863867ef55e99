// Command datasync copies the data directory shipped next to the executable
// into ./data, merging with whatever is already there.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/tobiasfaust/esp-handlefiles/config"
	"github.com/tobiasfaust/esp-handlefiles/datasync"
	"github.com/tobiasfaust/esp-handlefiles/errors"
	"github.com/tobiasfaust/esp-handlefiles/fs/billy"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	if err := a.command().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "datasync: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	loader *config.Loader
	locate []datasync.LocateOption
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		loader: config.NewLoader(billy.NewHostFS()),
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "datasync",
		Usage:     "Copy the bundled data directory into the working directory",
		Version:   version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML configuration file",
				Sources: cli.EnvVars("DATASYNC_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "source-dir",
				Usage:   "name of the bundled directory next to the executable",
				Sources: cli.EnvVars("DATASYNC_SOURCE_DIR"),
			},
			&cli.StringFlag{
				Name:    "target-dir",
				Usage:   "name of the directory created under the working directory",
				Sources: cli.EnvVars("DATASYNC_TARGET_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("DATASYNC_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "text or json",
				Sources: cli.EnvVars("DATASYNC_LOG_FORMAT"),
			},
		},
		Action: a.run,
	}
}

func (a *app) run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return errors.NewWithContext(errors.CodeInvalidInput, "unexpected arguments",
			map[string]any{"args": cmd.Args().Slice()})
	}

	cfg, err := a.loader.Load(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(a.stderr, cfg.Log)

	paths, err := datasync.LocatePaths(append(a.locate,
		datasync.WithSourceDir(cfg.SourceDir),
		datasync.WithTargetDir(cfg.TargetDir),
	)...)
	if err != nil {
		return err
	}

	res, err := datasync.New(datasync.WithLogger(logger)).Synchronize(ctx, paths.Source, paths.Target)
	if err != nil {
		return err
	}
	if res.SourceMissing {
		fmt.Fprintf(a.stdout, "Source directory %s does not exist.\n", res.Source)
	}
	return nil
}

// applyFlags overrides cfg with flags and environment variables that were
// explicitly set.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("source-dir") {
		cfg.SourceDir = cmd.String("source-dir")
	}
	if cmd.IsSet("target-dir") {
		cfg.TargetDir = cmd.String("target-dir")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
}
