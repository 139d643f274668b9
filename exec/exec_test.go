package exec

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	exec := New()
	if exec == nil {
		t.Fatal("New() returned nil")
	}
}

func TestBasicExecution(t *testing.T) {
	exec := New()
	result, err := exec.Run("echo", "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "hello world") {
		t.Errorf("expected stdout to contain 'hello world', got: %s", result.Stdout)
	}

	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got: %d", result.ExitCode)
	}
}

func TestNoArgs(t *testing.T) {
	_, err := New().Run()
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got: %T", err)
	}
	if execErr.ExitCode != -1 {
		t.Errorf("expected exit code -1, got: %d", execErr.ExitCode)
	}
}

func TestCommandFailure(t *testing.T) {
	exec := New()
	result, err := exec.Run("sh", "-c", "echo nope >&2; exit 3")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got: %T", err)
	}

	if execErr.ExitCode != 3 {
		t.Errorf("expected exit code 3, got: %d", execErr.ExitCode)
	}

	if !strings.Contains(execErr.Error(), "nope") {
		t.Errorf("expected error to include stderr, got: %s", execErr.Error())
	}

	if result == nil || !strings.Contains(result.Stderr, "nope") {
		t.Fatalf("expected result with stderr even with error, got: %+v", result)
	}
}

func TestWithDir(t *testing.T) {
	dir := t.TempDir()
	result, err := New().WithDir(dir).Run("pwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, dir) {
		t.Errorf("expected stdout to contain %q, got: %s", dir, result.Stdout)
	}
}

func TestWithEnv(t *testing.T) {
	exec := New()
	result, err := exec.WithEnv(map[string]string{
		"TEST_VAR": "test_value",
	}).Run("sh", "-c", "echo $TEST_VAR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "test_value") {
		t.Errorf("expected stdout to contain 'test_value', got: %s", result.Stdout)
	}
}

func TestDerivedExecutorsAreIndependent(t *testing.T) {
	base := New(WithEnv(map[string]string{"BASE": "1"}))

	withSecret := base.WithEnv(map[string]string{"SECRET": "s3cr3t"})
	if _, err := withSecret.Run("true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := base.Run("sh", "-c", "echo \"$BASE:$SECRET\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "1:" {
		t.Errorf("expected base executor to be untouched, got: %q", result.Stdout)
	}
}

func TestEnvNeverReachesParent(t *testing.T) {
	if _, err := New().WithEnv(map[string]string{"JEKIT_EXEC_TEST": "x"}).Run("true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := os.LookupEnv("JEKIT_EXEC_TEST"); ok {
		t.Error("child environment leaked into parent process")
	}
}

func TestWithoutInheritEnv(t *testing.T) {
	t.Setenv("JEKIT_PARENT_VAR", "parent")

	result, err := New().Run("sh", "-c", "echo \"[$JEKIT_PARENT_VAR]\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "[]" {
		t.Errorf("expected parent env to be hidden, got: %q", result.Stdout)
	}

	result, err = New(WithInheritEnv()).Run("sh", "-c", "echo \"[$JEKIT_PARENT_VAR]\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "[parent]" {
		t.Errorf("expected parent env to be inherited, got: %q", result.Stdout)
	}
}

func TestWithDisableColors(t *testing.T) {
	result, err := New(WithDisableColors()).Run("sh", "-c", "echo $NO_COLOR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(result.Stdout) != "1" {
		t.Errorf("expected NO_COLOR=1, got: %q", result.Stdout)
	}
}

func TestWithStdin(t *testing.T) {
	result, err := New().WithStdin(strings.NewReader("piped")).Run("cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stdout != "piped" {
		t.Errorf("expected 'piped', got: %q", result.Stdout)
	}
}

func TestWithTimeout(t *testing.T) {
	_, err := New().WithTimeout(50 * time.Millisecond).Run("sleep", "5")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got: %v", err)
	}
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().WithContext(ctx).Run("sleep", "5")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context canceled, got: %v", err)
	}
}

func TestCombinedOutput(t *testing.T) {
	result, err := New().Run("sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Combined, "out") || !strings.Contains(result.Combined, "err") {
		t.Errorf("expected combined output to hold both streams, got: %q", result.Combined)
	}
	if strings.Contains(result.Stdout, "err") {
		t.Errorf("stderr leaked into stdout: %q", result.Stdout)
	}
}
