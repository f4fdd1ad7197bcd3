package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/igolaizola/vidloop/pkg/cmd/loop"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/peterbourgon/ff/v3/ffyaml"
	"gopkg.in/yaml.v3"
)

// NewCommand returns the vidloop command. Running it without a subcommand
// loops the input.
func NewCommand(version, commit, date string) *ffcli.Command {
	cmd := "vidloop"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := newConfig()
	bindLoopFlags(fs, cfg)

	return &ffcli.Command{
		ShortUsage: "vidloop [flags] [<subcommand>]",
		ShortHelp:  "loop a clip to a target length and transcode it",
		Options:    options(),
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg.Logger = newLogger(cfg.Debug, os.Stderr)
			return loop.Run(ctx, cfg)
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(version, commit, date),
			newPlanCommand(os.Stdout),
		},
	}
}

func options() []ff.Option {
	return []ff.Option{
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
		ff.WithEnvVarPrefix("VIDLOOP"),
	}
}

func newConfig() *loop.Config {
	return &loop.Config{
		Length: loop.DefaultLength,
	}
}

func bindLoopFlags(fs *flag.FlagSet, cfg *loop.Config) {
	fs.BoolVar(&cfg.Debug, "debug", false, "debug mode")

	fs.StringVar(&cfg.Input, "input", "", "input video file or http(s) url")
	fs.StringVar(&cfg.Input, "i", "", "shorthand for -input")
	fs.StringVar(&cfg.Output, "output", "", "output file (optional, derived from input and length)")
	fs.StringVar(&cfg.Output, "o", "", "shorthand for -output")
	fs.Var((*Length)(&cfg.Length), "length", "target length: <n>m minutes, <n>s or <n> seconds")
	fs.Var((*Length)(&cfg.Length), "t", "shorthand for -length")
	fs.Var((*Threads)(&cfg.Threads), "threads", "encoder threads (optional, 0 is automatic)")

	fs.StringVar(&cfg.FFmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")
	fs.StringVar(&cfg.FFprobe, "ffprobe", "ffprobe", "ffprobe binary")

	fs.StringVar(&cfg.Token, "token", "", "bearer token to download remote input (optional)")
	fs.StringVar(&cfg.Proxy, "proxy", "", "proxy to download remote input (optional)")
	fs.DurationVar(&cfg.Timeout, "timeout", 2*time.Minute, "timeout to download remote input")
}

func newLogger(debug bool, w io.Writer) hclog.Logger {
	level := hclog.Info
	if debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "vidloop",
		Level:  level,
		Output: w,
	})
}

func newVersionCommand(version, commit, date string) *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "vidloop version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if commit != "" {
				versionFields = append(versionFields, commit)
			}
			if date != "" {
				versionFields = append(versionFields, date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}

func newPlanCommand(out io.Writer) *ffcli.Command {
	cmd := "plan"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	cfg := newConfig()
	bindLoopFlags(fs, cfg)
	format := fs.String("format", "json", "output format (json or yaml)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("vidloop %s [flags]", cmd),
		ShortHelp:  "print the loop plan and ffmpeg command without running it",
		Options:    options(),
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg.Logger = newLogger(cfg.Debug, os.Stderr)
			plan, err := loop.Prepare(ctx, cfg)
			if err != nil {
				return err
			}
			return writePlan(out, plan, *format)
		},
	}
}

func writePlan(w io.Writer, plan *loop.Plan, format string) error {
	var b []byte
	var err error
	switch format {
	case "json":
		b, err = json.MarshalIndent(plan, "", "  ")
		b = append(b, '\n')
	case "yaml":
		b, err = yaml.Marshal(plan)
	default:
		return fmt.Errorf("vidloop: unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("vidloop: couldn't marshal plan: %w", err)
	}
	_, err = w.Write(b)
	return err
}
