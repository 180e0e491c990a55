package jobs

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
)

//go:embed plans.yaml
var defaultPlansYAML []byte

type PlanStep struct {
	Plan             scheduling.SolverPlan `yaml:"plan"`
	TimeLimitSeconds int                   `yaml:"timeLimitSeconds"`
}

type planFile struct {
	Plans []PlanStep `yaml:"plans"`
}

// DefaultPlans is A_STRICT 30s, A_RELAXED 20s, B_MILP 25s.
func DefaultPlans() []PlanStep {
	steps, err := ParsePlans(defaultPlansYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded plans.yaml: %v", err))
	}
	return steps
}

// LoadPlans reads the plan table from path, or the embedded default when path is empty.
func LoadPlans(path string) ([]PlanStep, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPlans(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans %s: %w", path, err)
	}
	return ParsePlans(raw)
}

// ParsePlans decodes and validates a plan table. Plans must be known, unique
// and listed in state-machine order, so every step is a forward transition.
func ParsePlans(raw []byte) ([]PlanStep, error) {
	var f planFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	if len(f.Plans) == 0 {
		return nil, fmt.Errorf("plans: at least one plan required")
	}
	prev := scheduling.JobNormalizing
	for i, step := range f.Plans {
		status := step.Plan.SolvingStatus()
		if status == "" {
			return nil, fmt.Errorf("plans[%d]: unknown plan %q", i, step.Plan)
		}
		if !scheduling.CanTransition(prev, status) {
			return nil, fmt.Errorf("plans[%d]: %s out of order", i, step.Plan)
		}
		if step.TimeLimitSeconds <= 0 {
			return nil, fmt.Errorf("plans[%d]: timeLimitSeconds must be positive", i)
		}
		prev = status
	}
	return f.Plans, nil
}
