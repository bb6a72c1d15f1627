// Package jbosscli executes management commands against application-server
// controllers by spawning the external CLI binary. One Gateway is created at
// process start and shared by every poller: it owns the result cache, the
// per-command timeout, and the simulation switch.
package jbosscli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/mramin786/jboss-monitor/internal/errors"
	"github.com/mramin786/jboss-monitor/internal/logger"
	"github.com/mramin786/jboss-monitor/internal/monitor"
)

// DefaultBinary is the management CLI launcher expected on PATH.
const DefaultBinary = "jboss-cli.sh"

// Target identifies one controller endpoint plus the credential used to
// reach it.
type Target struct {
	Host       string
	Port       int
	Credential monitor.Credential
}

func (t Target) controller() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Result is the payload of a successful CLI invocation.
type Result struct {
	// Raw is the trimmed stdout of the CLI.
	Raw string
	// Value is the decoded JSON when Raw looks like JSON, otherwise Raw
	// itself. This is what the response parsers consume.
	Value interface{}
}

// Runner abstracts subprocess execution so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (stdout, stderr string, exitCode int, err error)
}

// pipeWaitDelay bounds how long Run waits for output pipes to drain after
// cancellation before abandoning them.
const pipeWaitDelay = 3 * time.Second

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string) (string, string, int, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// The CLI is a shell launcher that forks a JVM child inheriting the
	// output pipes. Killing only the launcher leaves the child holding the
	// pipes and Run blocked past the timeout, so cancellation signals the
	// whole process group, and WaitDelay abandons the pipes if anything in
	// the group survives the signal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = pipeWaitDelay

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = nil // non-zero exit is reported via exitCode, not err
		} else {
			exitCode = -1
		}
	}
	return stdout.String(), stderr.String(), exitCode, err
}

// connectFailurePatterns detect controller-unreachable conditions in CLI
// stderr, which otherwise surfaces as a generic non-zero exit.
var connectFailurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)failed to connect to the controller`),
	regexp.MustCompile(`(?i)connection refused`),
	regexp.MustCompile(`(?i)no route to host`),
	regexp.MustCompile(`(?i)WFLYPRT0053`),
	regexp.MustCompile(`(?i)java\.net\.ConnectException`),
}

// Config holds the gateway's tunables, typically sourced from the process
// configuration.
type Config struct {
	// Binary is the CLI launcher; DefaultBinary when empty.
	Binary string
	// Timeout bounds each CLI invocation.
	Timeout time.Duration
	// CacheTTL bounds how long read-only results are reused.
	CacheTTL time.Duration
	// Simulate serves fixture payloads instead of invoking the CLI.
	Simulate bool
	// SimulateFallback serves fixtures when the CLI binary is absent,
	// keeping degraded environments observable.
	SimulateFallback bool
}

// Gateway executes management commands. Safe for concurrent use.
type Gateway struct {
	binary           string
	timeout          time.Duration
	simulate         bool
	simulateFallback bool
	cache            *resultCache
	runner           Runner
	log              logger.Logger
}

// New creates a Gateway from cfg. A nil logger defaults to the package
// default.
func New(cfg Config, log logger.Logger) *Gateway {
	if log == nil {
		log = logger.Default()
	}
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Gateway{
		binary:           binary,
		timeout:          timeout,
		simulate:         cfg.Simulate,
		simulateFallback: cfg.SimulateFallback,
		cache:            newResultCache(ttl),
		runner:           execRunner{},
		log:              log,
	}
}

// SetRunner replaces the subprocess runner. Intended for tests.
func (g *Gateway) SetRunner(r Runner) {
	g.runner = r
}

// Execute runs one management command against the target. Read-only
// commands are served from the result cache when a fresh entry exists; a
// real invocation spawns one CLI subprocess bounded by the gateway timeout.
func (g *Gateway) Execute(ctx context.Context, target Target, command string) (Result, error) {
	if g.simulate {
		return g.simulated(command)
	}

	key := cacheKey{
		host:    target.Host,
		port:    target.Port,
		user:    target.Credential.Username,
		command: command,
	}
	cacheable := IsReadOnly(command)
	if cacheable {
		if result, ok := g.cache.get(key); ok {
			g.log.Debug("cache hit for %s on %s", command, target.controller())
			return result, nil
		}
	}

	result, err := g.invoke(ctx, target, command)
	if err != nil {
		return Result{}, err
	}

	if cacheable {
		g.cache.put(key, result)
	}
	return result, nil
}

// invoke spawns the CLI subprocess and classifies its outcome.
func (g *Gateway) invoke(ctx context.Context, target Target, command string) (Result, error) {
	args := []string{
		"--controller=" + target.controller(),
		"--user=" + target.Credential.Username,
		"--password=" + target.Credential.Password,
		"--command=" + command,
	}

	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.log.Debug("executing %s %s", g.binary, strings.Join(maskArgs(args), " "))
	stdout, stderr, exitCode, err := g.runner.Run(runCtx, g.binary, args)

	switch {
	case err != nil && stderrors.Is(err, exec.ErrNotFound):
		if g.simulateFallback {
			g.log.Warn("%s not found, serving simulation fixture for %s", g.binary, target.controller())
			return g.simulated(command)
		}
		return Result{}, errors.WrapWithCode(err, errors.ErrUnavailable,
			fmt.Sprintf("'%s' not found in PATH", g.binary),
			"Install the management CLI or enable simulation mode")
	case ctx.Err() != nil:
		// The caller's context was cancelled (shutdown), which is not a
		// command timeout.
		return Result{}, ctx.Err()
	case runCtx.Err() != nil:
		return Result{}, errors.WrapWithCode(runCtx.Err(), errors.ErrTimeout,
			fmt.Sprintf("Command timed out after %s on %s", g.timeout, target.controller()),
			"Raise cli_timeout or check controller responsiveness")
	case err != nil:
		return Result{}, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to invoke %s", g.binary), "")
	case exitCode != 0:
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = strings.TrimSpace(stdout)
		}
		if isConnectFailure(detail) {
			return Result{}, errors.New(errors.ErrConnect,
				fmt.Sprintf("Cannot reach controller %s", target.controller()), detail)
		}
		return Result{}, errors.New(errors.ErrExec,
			fmt.Sprintf("CLI exited %d for command on %s", exitCode, target.controller()), detail)
	}

	return decodeOutput(stdout), nil
}

// simulated serves the fixture payload for a command.
func (g *Gateway) simulated(command string) (Result, error) {
	payload, ok := fixtureFor(command)
	if !ok {
		return Result{}, errors.New(errors.ErrExec,
			"No simulation fixture for command", command)
	}
	return decodeOutput(payload), nil
}

// decodeOutput trims stdout and decodes it as JSON when it looks like JSON.
// Non-JSON output (plain attribute values, DMR bracket text) passes through
// as a string for the fallback decoders.
func decodeOutput(stdout string) Result {
	raw := strings.TrimSpace(stdout)
	result := Result{Raw: raw, Value: raw}

	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		var value interface{}
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			result.Value = value
		}
	}
	return result
}

func isConnectFailure(detail string) bool {
	for _, pattern := range connectFailurePatterns {
		if pattern.MatchString(detail) {
			return true
		}
	}
	return false
}

// maskArgs returns a copy of the CLI arguments with the password value
// replaced. Every logged or error-embedded form of the invocation goes
// through this.
func maskArgs(args []string) []string {
	masked := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, "--password=") {
			masked[i] = "--password=********"
			continue
		}
		masked[i] = arg
	}
	return masked
}
