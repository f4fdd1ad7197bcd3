// Package ffmpegtest provides a fake ffmpeg.Runner for tests.
package ffmpegtest

import (
	"context"
	"sync"

	"github.com/igolaizola/vidloop/pkg/ffmpeg"
)

// Call is a recorded invocation.
type Call struct {
	Name string
	Args []string
}

// Runner returns canned results keyed by program name and records every
// call. Programs without a result exit with 0 and empty output.
type Runner struct {
	Results map[string]*ffmpeg.Result
	Errors  map[string]error
	// OnRun is called before returning, e.g. to inspect files the real
	// program would read.
	OnRun func(name string, args []string)

	mu    sync.Mutex
	calls []Call
}

func (r *Runner) Run(ctx context.Context, name string, args ...string) (*ffmpeg.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	r.mu.Unlock()

	if r.OnRun != nil {
		r.OnRun(name, args)
	}
	if err := r.Errors[name]; err != nil {
		return nil, err
	}
	if res, ok := r.Results[name]; ok {
		return res, nil
	}
	return &ffmpeg.Result{}, nil
}

// Calls returns the recorded invocations in order.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Names returns the program names of the recorded invocations.
func (r *Runner) Names() []string {
	var names []string
	for _, c := range r.Calls() {
		names = append(names, c.Name)
	}
	return names
}
