// Package tools detects external programs and runs them with captured output.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	version "github.com/hashicorp/go-version"
	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("tool not found")

// versionRegex picks the first dotted version number out of a --version line.
var versionRegex = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.\-]+)?)`)

// Spec describes a tool to probe.
type Spec struct {
	Name        string
	VersionArgs []string // default: --version
	Constraint  string   // go-version constraint, e.g. ">= 2.30"
	Required    bool
}

// Status is the outcome of probing one tool.
type Status struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Found     bool   `json:"found"`
	Raw       string `json:"raw,omitempty"`     // first line of the version output
	Version   string `json:"version,omitempty"` // normalized version, "" if unparsable
	Satisfied bool   `json:"satisfied"`
	Required  bool   `json:"required"`
	Err       string `json:"err,omitempty"`
}

// OK reports whether the tool is usable: present and within its constraint.
func (s Status) OK() bool {
	return s.Found && s.Satisfied
}

// ExecError is returned when a tool exits unsuccessfully.
type ExecError struct {
	Tool     string
	Args     []string
	ExitCode int // -1 when the process did not exit normally
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s %s: exit %d", e.Tool, strings.Join(e.Args, " "), e.ExitCode)
	if s := firstLine(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

// Output is the captured result of a successful run.
type Output struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner runs tools as child processes. The zero value is usable.
type Runner struct {
	// Env is appended to the inherited environment.
	Env []string
	// LookPath resolves a tool name; defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Run executes tool with args in dir and waits for it. A tool missing from
// PATH yields an error wrapping ErrNotFound; a non-zero exit yields
// *ExecError carrying stderr.
func (r Runner) Run(ctx context.Context, dir, tool string, args ...string) (Output, error) {
	path, err := r.lookPath(tool)
	if err != nil {
		return Output{}, err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	if err != nil {
		execErr := &ExecError{Tool: tool, Args: args, ExitCode: -1, Stderr: out.Stderr, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		}
		return out, execErr
	}
	return out, nil
}

func (r Runner) lookPath(tool string) (string, error) {
	look := r.LookPath
	if look == nil {
		look = exec.LookPath
	}
	path, err := look(tool)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, tool)
	}
	return path, nil
}

// Detect probes one tool: whether it is on PATH, its version line and
// whether that version satisfies the constraint. Failures are reported in
// the Status rather than as an error.
func (r Runner) Detect(ctx context.Context, spec Spec) Status {
	st := Status{Name: spec.Name, Required: spec.Required}
	path, err := r.lookPath(spec.Name)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	st.Path = path
	st.Found = true

	args := spec.VersionArgs
	if len(args) == 0 {
		args = []string{"--version"}
	}
	out, err := r.Run(ctx, "", spec.Name, args...)
	if err != nil {
		st.Err = err.Error()
		return st
	}
	raw := out.Stdout
	if strings.TrimSpace(raw) == "" {
		raw = out.Stderr
	}
	st.Raw = firstLine(ansi.Strip(raw))

	v, err := ParseVersion(st.Raw)
	if err != nil {
		st.Satisfied = spec.Constraint == ""
		if !st.Satisfied {
			st.Err = err.Error()
		}
		return st
	}
	st.Version = v.String()
	st.Satisfied, err = Satisfies(v, spec.Constraint)
	if err != nil {
		st.Err = err.Error()
	}
	return st
}

// DetectAll probes every spec concurrently and returns statuses in spec order.
func (r Runner) DetectAll(ctx context.Context, specs []Spec) []Status {
	out := make([]Status, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			out[i] = r.Detect(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ParseVersion extracts a version number from a tool's version line, e.g.
// "git version 2.43.0" or "uv 0.4.18 (Homebrew)".
func ParseVersion(line string) (*version.Version, error) {
	m := versionRegex.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("no version in %q", line)
	}
	return version.NewVersion(m[1])
}

// Satisfies checks v against a go-version constraint string. An empty
// constraint is always satisfied.
func Satisfies(v *version.Version, constraint string) (bool, error) {
	if strings.TrimSpace(constraint) == "" {
		return true, nil
	}
	c, err := version.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return c.Check(v), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
