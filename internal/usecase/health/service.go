package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Checker verifies one dependency.
type Checker func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Checker
}

// Service runs registered dependency checks and aggregates the results.
type Service struct {
	checks []namedCheck
}

// New creates an empty health service.
func New() *Service {
	return &Service{}
}

// Register adds a named dependency check. Nil checkers are ignored so
// optional dependencies can be wired unconditionally.
func (s *Service) Register(name string, check Checker) *Service {
	if check != nil {
		s.checks = append(s.checks, namedCheck{name: name, check: check})
	}
	return s
}

// Check runs all registered checks.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	status := Healthy

	for _, nc := range s.checks {
		if err := nc.check(ctx); err != nil {
			checks[nc.name] = CheckError
			status = Degraded
		} else {
			checks[nc.name] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
