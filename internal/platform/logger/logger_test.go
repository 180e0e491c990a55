package logger

import "testing"

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	cases := []struct {
		key  string
		val  interface{}
		want interface{}
	}{
		{"postgres_password", "hunter2", "[REDACTED]"},
		{"aws_secret_access_key", "abc", "[REDACTED]"},
		{"job_id", "123", "123"},
		{"status", "FAILED", "FAILED"},
	}
	for _, tc := range cases {
		if got := sanitizeValue(tc.key, tc.val); got != tc.want {
			t.Fatalf("sanitizeValue(%q): want=%v got=%v", tc.key, tc.want, got)
		}
	}
}

func TestSanitizeValueHashesNames(t *testing.T) {
	got, ok := sanitizeValue("full_name", "Ada Lovelace").(string)
	if !ok {
		t.Fatalf("expected string result")
	}
	if got == "Ada Lovelace" || len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hashed value: %q", got)
	}
	if again := sanitizeValue("full_name", "Ada Lovelace"); again != got {
		t.Fatalf("hash not stable: %v vs %v", again, got)
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "test"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("component", "test").Debug("hello", "k", "v")
	}
}
