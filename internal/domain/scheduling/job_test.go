package scheduling

import "testing"

func TestCanTransitionForwardOnly(t *testing.T) {
	order := []JobStatus{
		JobRequested, JobValidated, JobNormalizing, JobSolvingAStrict,
		JobSolvingARelaxed, JobSolvingBMilp, JobEvaluating, JobPersisting, JobCompleted,
	}
	for i, from := range order {
		for j, to := range order {
			want := j > i && !from.IsTerminal()
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s): want=%v got=%v", from, to, want, got)
			}
		}
		wantFail := !from.IsTerminal()
		if got := CanTransition(from, JobFailed); got != wantFail {
			t.Fatalf("CanTransition(%s, FAILED): want=%v got=%v", from, wantFail, got)
		}
	}
	if CanTransition(JobFailed, JobRequested) {
		t.Fatalf("FAILED must be terminal")
	}
}

func TestPhaseMapping(t *testing.T) {
	cases := map[JobStatus]string{
		JobValidated:       "VALIDATING",
		JobSolvingAStrict:  "STRICT_PASS",
		JobSolvingARelaxed: "RELAXED_PASS",
		JobSolvingBMilp:    "MILP_FALLBACK",
		JobCompleted:       "COMPLETED",
		JobStatus("WEIRD"): "UNKNOWN",
	}
	for status, want := range cases {
		if got := status.Phase(); got != want {
			t.Fatalf("Phase(%s): want=%s got=%s", status, want, got)
		}
	}
}

func TestParseDateUTC(t *testing.T) {
	d, err := ParseDate("2025-01-04")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := FormatDate(d); got != "2025-01-04" {
		t.Fatalf("FormatDate: want=2025-01-04 got=%s", got)
	}
	if _, err := ParseDate("2025-13-40"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}
