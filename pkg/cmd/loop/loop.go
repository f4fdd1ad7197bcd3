package loop

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/igolaizola/vidloop/pkg/fetch"
	"github.com/igolaizola/vidloop/pkg/ffmpeg"
	"github.com/igolaizola/vidloop/pkg/repeat"
)

// DefaultLength is the target duration in seconds when none is given.
const DefaultLength = 60.0

var (
	ErrMissingInput    = errors.New("missing input")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrFFmpegFailed    = errors.New("ffmpeg failed")
)

// ExitError is a pipeline failure with the exit code the process should
// terminate with.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for the result of Run.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Downloader fetches a remote input to a local file.
type Downloader interface {
	Download(ctx context.Context, u, output string) error
}

type Config struct {
	Debug bool

	Input   string
	Output  string
	Length  float64
	Threads int
	FFmpeg  string
	FFprobe string

	// Remote input options
	Token   string
	Proxy   string
	Timeout time.Duration

	// Manifest is the concat list path, concat_list.txt if empty.
	Manifest   string
	Profile    *ffmpeg.Profile
	Runner     ffmpeg.Runner
	Downloader Downloader
	Logger     hclog.Logger
}

// Plan describes the transcode that Run performs. Input is the input as
// given, a URL for remote inputs.
type Plan struct {
	Input          string   `json:"input" yaml:"input"`
	Output         string   `json:"output" yaml:"output"`
	SourceDuration float64  `json:"sourceDuration" yaml:"source_duration"`
	TargetDuration float64  `json:"targetDuration" yaml:"target_duration"`
	Loops          int      `json:"loops" yaml:"loops"`
	Manifest       string   `json:"manifest" yaml:"manifest"`
	Command        []string `json:"command" yaml:"command"`
}

// Run loops the input clip until it fills the target length and transcodes
// the result to the output file.
func Run(ctx context.Context, cfg *Config) error {
	cfg = withDefaults(cfg)
	log := cfg.Logger

	input, release, err := resolveInput(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	plan, err := prepare(ctx, cfg, input)
	if err != nil {
		return err
	}

	// Create the manifest and remove it whatever the transcode outcome
	if err := repeat.WriteManifest(plan.Manifest, input, plan.Loops); err != nil {
		return fmt.Errorf("vidloop: couldn't create list file: %w", err)
	}
	defer func() {
		if err := os.Remove(plan.Manifest); err != nil {
			log.Debug("couldn't remove list file", "path", plan.Manifest, "error", err)
		}
	}()

	log.Debug("running ffmpeg", "args", strings.Join(plan.Command[1:], " "))
	code, err := ffmpeg.Transcode(ctx, cfg.Runner, plan.Command[0], plan.Command[1:])
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code, Err: ErrFFmpegFailed}
	}
	log.Info("loop created", "output", plan.Output, "loops", plan.Loops)
	return nil
}

// Prepare resolves, probes and plans the transcode without writing the
// manifest or running ffmpeg.
func Prepare(ctx context.Context, cfg *Config) (*Plan, error) {
	cfg = withDefaults(cfg)
	input, release, err := resolveInput(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer release()
	return prepare(ctx, cfg, input)
}

func withDefaults(cfg *Config) *Config {
	c := *cfg
	if c.FFmpeg == "" {
		c.FFmpeg = "ffmpeg"
	}
	if c.FFprobe == "" {
		c.FFprobe = "ffprobe"
	}
	if c.Manifest == "" {
		c.Manifest = repeat.ManifestName
	}
	if c.Profile == nil {
		p := ffmpeg.DefaultProfile
		c.Profile = &p
	}
	if c.Runner == nil {
		c.Runner = &ffmpeg.ExecRunner{}
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	return &c
}

func prepare(ctx context.Context, cfg *Config, input string) (*Plan, error) {
	log := cfg.Logger

	output := cfg.Output
	if output == "" {
		output = repeat.OutputPath(sourceName(cfg.Input), cfg.Length)
	}

	if fi, err := os.Stat(input); err != nil || fi.IsDir() {
		return nil, &ExitError{Code: 1, Err: ErrMissingInput}
	}

	duration, err := ffmpeg.ProbeDuration(ctx, cfg.Runner, cfg.FFprobe, input)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, &ExitError{Code: 1, Err: ErrInvalidDuration}
	}
	loops := repeat.Count(cfg.Length, duration)
	log.Debug("planned loops", "input", input, "duration", duration, "target", cfg.Length, "loops", loops)

	args := cfg.Profile.TranscodeArgs(cfg.Manifest, output, cfg.Length, cfg.Threads)
	return &Plan{
		Input:          cfg.Input,
		Output:         output,
		SourceDuration: duration,
		TargetDuration: cfg.Length,
		Loops:          loops,
		Manifest:       cfg.Manifest,
		Command:        append([]string{cfg.FFmpeg}, args...),
	}, nil
}

func isRemote(input string) bool {
	s := strings.ToLower(input)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// sourceName returns the name the default output is derived from. For remote
// inputs this is the last element of the URL path.
func sourceName(input string) string {
	if !isRemote(input) {
		return input
	}
	u, err := url.Parse(input)
	if err != nil || u.Path == "" {
		return ""
	}
	return path.Base(u.Path)
}

// resolveInput returns a local path for the input, downloading it first when
// it is a URL. The returned release func removes any downloaded file.
func resolveInput(ctx context.Context, cfg *Config) (string, func(), error) {
	noop := func() {}
	if !isRemote(cfg.Input) {
		return cfg.Input, noop, nil
	}
	log := cfg.Logger

	downloader := cfg.Downloader
	if downloader == nil {
		client, err := fetch.New(&fetch.Config{
			Token:   cfg.Token,
			Proxy:   cfg.Proxy,
			Timeout: cfg.Timeout,
			Debug:   cfg.Debug,
			Logger:  log.Named("fetch"),
		})
		if err != nil {
			return "", noop, fmt.Errorf("vidloop: couldn't create download client: %w", err)
		}
		downloader = client
	}

	ext := filepath.Ext(sourceName(cfg.Input))
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("vidloop-%s%s", uuid.NewString(), ext))
	release := func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			log.Debug("couldn't remove downloaded input", "path", tmp, "error", err)
		}
	}
	log.Debug("downloading input", "url", cfg.Input, "path", tmp)
	if err := downloader.Download(ctx, cfg.Input, tmp); err != nil {
		release()
		log.Error("couldn't download input", "url", cfg.Input, "error", err)
		return "", noop, &ExitError{Code: 1, Err: ErrMissingInput}
	}
	return tmp, release, nil
}
