package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type CLIConfig struct {
	Python    string
	CLIPath   string
	Grace     time.Duration
	DiagLimit int
}

func (c CLIConfig) withDefaults() CLIConfig {
	if strings.TrimSpace(c.Python) == "" {
		c.Python = "python3"
	}
	if strings.TrimSpace(c.CLIPath) == "" {
		c.CLIPath = "solver/solver_cli.py"
	}
	if c.Grace <= 0 {
		c.Grace = 500 * time.Millisecond
	}
	if c.DiagLimit <= 0 {
		c.DiagLimit = 4000
	}
	return c
}

// CLI runs the engine as a child process that exchanges JSON files.
type CLI struct {
	log *logger.Logger
	cfg CLIConfig
}

func NewCLI(baseLog *logger.Logger, cfg CLIConfig) *CLI {
	return &CLI{
		log: baseLog.With("component", "SolverCLI"),
		cfg: cfg.withDefaults(),
	}
}

type cliResponse struct {
	Status         string         `json:"status"`
	Feasible       *bool          `json:"feasible"`
	ObjectiveValue *float64       `json:"objective_value"`
	Assignments    []Assignment   `json:"assignments"`
	Details        any            `json:"details"`
	Meta           map[string]any `json:"meta"`
}

func (c *CLI) Solve(ctx context.Context, in Input, opts Options) (*Result, error) {
	dir, err := os.MkdirTemp("", "maywin-solver-")
	if err != nil {
		return nil, fmt.Errorf("solver temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	id := uuid.NewString()
	inPath := filepath.Join(dir, "in-"+id+".json")
	outPath := filepath.Join(dir, "out-"+id+".json")

	body, err := json.Marshal(ToRequest(in))
	if err != nil {
		return nil, fmt.Errorf("marshal solver request: %w", err)
	}
	if err := os.WriteFile(inPath, body, 0o600); err != nil {
		return nil, fmt.Errorf("write solver request: %w", err)
	}

	limit := opts.TimeLimitSeconds
	if limit < 1 {
		limit = 1
	}
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(limit)*time.Second+c.cfg.Grace)
	defer cancel()

	stdout := &boundedBuffer{limit: c.cfg.DiagLimit}
	stderr := &boundedBuffer{limit: c.cfg.DiagLimit}
	cmd := exec.CommandContext(runCtx, c.cfg.Python, c.cfg.CLIPath, "--cli", "--input", inPath, "--output", outPath)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = c.cfg.Grace

	log := c.log.With("job_id", opts.JobID, "plan", opts.Plan, "time_limit_s", limit)
	log.Debug("starting solver")

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start solver %s: %w", c.cfg.CLIPath, err)
	}
	waitErr := cmd.Wait()
	elapsed := time.Since(started).Milliseconds()

	meta := map[string]any{
		"plan":      string(opts.Plan),
		"jobId":     opts.JobID.String(),
		"elapsedMs": elapsed,
		"cliPath":   c.cfg.CLIPath,
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		log.Warn("solver timed out", "elapsed_ms", elapsed)
		return &Result{
			Feasible:    boolPtr(false),
			Status:      StatusTimeout,
			Details:     fmt.Sprintf("Solver timed out after %ds", limit),
			Assignments: []Assignment{},
			Meta:        meta,
		}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("wait solver: %w", waitErr)
		}
		exitCode = exitErr.ExitCode()
	}
	meta["exitCode"] = exitCode
	meta["stdout"] = stdout.String()
	meta["stderr"] = stderr.String()

	resp, readErr := readResponse(outPath)
	if readErr != nil {
		detail := fmt.Sprintf("Solver CLI exited with code=%d", exitCode)
		if exitCode == 0 {
			detail = fmt.Sprintf("Solver CLI exited with code=0 but produced no readable output: %v", readErr)
		}
		log.Warn("solver produced no usable output", "exit_code", exitCode, "error", readErr)
		return &Result{
			Feasible:    boolPtr(false),
			Status:      StatusError,
			Details:     detail,
			Assignments: []Assignment{},
			Meta:        meta,
		}, nil
	}

	status := strings.ToUpper(strings.TrimSpace(resp.Status))
	feasible := resp.Feasible
	if feasible == nil {
		feasible = boolPtr(isFeasibleStatus(status))
	}
	meta["solverDetails"] = resp.Details
	for k, v := range resp.Meta {
		if _, taken := meta[k]; !taken {
			meta[k] = v
		}
	}
	assignments := resp.Assignments
	if assignments == nil {
		assignments = []Assignment{}
	}

	log.Debug("solver finished", "status", status, "assignments", len(assignments), "elapsed_ms", elapsed)
	return &Result{
		Feasible:    feasible,
		Status:      status,
		Objective:   resp.ObjectiveValue,
		Assignments: assignments,
		Details:     resp.Details,
		Meta:        meta,
	}, nil
}

func readResponse(path string) (*cliResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp cliResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func isFeasibleStatus(status string) bool {
	switch status {
	case StatusOptimal, StatusFeasible, StatusRelaxedOptimal, StatusRelaxedFeasible, StatusHeuristic:
		return true
	default:
		return false
	}
}

// boundedBuffer keeps the first limit bytes written and discards the rest.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }
