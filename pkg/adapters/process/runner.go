package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/actionchain/pkg/domain"
)

// ErrNotRegistered is returned for a command missing from the allow-list.
var ErrNotRegistered = errors.New("command not registered")

// EnvPrefix prefixes the environment variables carrying task parameters.
const EnvPrefix = "ACTIONCHAIN_PARAM_"

// Runner executes allow-listed local processes. The input dataset is written
// to the process as JSON on stdin; task parameters travel as environment
// variables, never as command-line flags.
type Runner struct {
	registry map[string]CommandConfig
	baseDir  string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands populates the allow-list from a loaded config.
func WithCommands(commands map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			c.Name = name
			r.registry[name] = c
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{registry: make(map[string]CommandConfig)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.registry[name] = CommandConfig{Name: name, Command: command, Args: args}
}

// Names lists the registered commands, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Output is what a process printed. Data is set when stdout was a dataset
// object or a JSON array of rows; otherwise Text holds the trimmed output.
type Output struct {
	Data *domain.Dataset
	Text string
}

// Run executes the named command with input on stdin.
func (r *Runner) Run(ctx context.Context, name string, input *domain.Dataset, params map[string]any) (*Output, error) {
	proc, ok := r.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	stdin, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), environment(proc, params)...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseOutput(stdout.String(), input), nil
}

func environment(proc CommandConfig, params map[string]any) []string {
	env := make([]string, 0, len(proc.Environment)+len(params))
	for k, v := range proc.Environment {
		env = append(env, k+"="+v)
	}
	for k, v := range params {
		var val string
		switch v.(type) {
		case string, int, int64, float64, bool:
			val = fmt.Sprintf("%v", v)
		case nil:
			val = ""
		default:
			if encoded, err := json.Marshal(v); err == nil {
				val = string(encoded)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+val)
	}
	sort.Strings(env)
	return env
}

func parseOutput(raw string, input *domain.Dataset) *Output {
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}"):
		var ds domain.Dataset
		if err := json.Unmarshal([]byte(trimmed), &ds); err == nil && ds.Rows != nil {
			inherit(&ds, input)
			return &Output{Data: &ds}
		}
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		var rows []domain.Row
		if err := json.Unmarshal([]byte(trimmed), &rows); err == nil {
			ds := domain.Dataset{Rows: rows}
			inherit(&ds, input)
			return &Output{Data: &ds}
		}
	}
	return &Output{Text: trimmed}
}

// inherit fills entity and key from the input when the process left them out.
func inherit(ds *domain.Dataset, input *domain.Dataset) {
	if input == nil {
		return
	}
	if ds.Entity == "" {
		ds.Entity = input.Entity
	}
	if ds.Key == "" {
		ds.Key = input.Key
	}
}
