package extraction

import (
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"discd/internal/logging"
)

func startShell(t *testing.T, script string) *Process {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}
	proc, err := startProcess(sh, []string{"-c", script}, 1, logging.NewNop())
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}
	return proc
}

func TestProcessStreamsStdoutToEOF(t *testing.T) {
	proc := startShell(t, `printf 'RIFFdata'`)

	data, err := io.ReadAll(proc.Output())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "RIFFdata" {
		t.Fatalf("output = %q, want RIFFdata", data)
	}

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process not reaped after EOF")
	}
	if err := proc.Err(); err != nil {
		t.Fatalf("clean exit reported error: %v", err)
	}
	if proc.Terminated() {
		t.Fatal("natural exit must not count as terminated")
	}
}

func TestProcessReportsNonZeroExit(t *testing.T) {
	proc := startShell(t, `exit 3`)

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process not reaped")
	}

	var exitErr *exec.ExitError
	if !errors.As(proc.Err(), &exitErr) {
		t.Fatalf("err = %v, want ExitError", proc.Err())
	}
	if exitErr.ExitCode() != 3 {
		t.Fatalf("exit code = %d, want 3", exitErr.ExitCode())
	}
}

func TestTerminateStopsCooperativeProcess(t *testing.T) {
	proc := startShell(t, `trap 'exit 0' TERM; while true; do sleep 0.1; done`)

	// Give the trap a moment to install.
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	proc.Terminate(5 * time.Second)
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("cooperative terminate took %s", elapsed)
	}
	if !proc.Terminated() {
		t.Fatal("Terminated() should report true after Terminate")
	}

	// The output pipe must be closed so a pending reader unblocks.
	buf := make([]byte, 16)
	if _, err := proc.Output().Read(buf); err == nil {
		t.Fatal("read after Terminate should fail or hit EOF")
	}
}

func TestTerminateEscalatesToKill(t *testing.T) {
	proc := startShell(t, `trap '' TERM; while true; do sleep 0.1; done`)

	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		proc.Terminate(200 * time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Terminate did not escalate to SIGKILL")
	}
	if proc.Err() == nil {
		t.Fatal("killed process should report a wait error")
	}
}

func TestTerminateIdempotent(t *testing.T) {
	proc := startShell(t, `sleep 60`)

	proc.Terminate(time.Second)
	// Second call must return immediately without blocking or panicking.
	finished := make(chan struct{})
	go func() {
		proc.Terminate(time.Second)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("repeated Terminate blocked")
	}
}

func TestTerminateAfterNaturalExit(t *testing.T) {
	proc := startShell(t, `true`)

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process not reaped")
	}

	proc.Terminate(time.Second)
	if proc.Terminated() {
		t.Fatal("Terminate after exit must not flag the process as terminated")
	}
}

func TestBuildArgs(t *testing.T) {
	sup := New("cdparanoia", "/dev/sr1", 40, logging.NewNop())
	args := sup.buildArgs(7)
	want := []string{
		"--force-cdrom-device=/dev/sr1",
		"--verbose",
		"--output-wav",
		"--never-skip=40",
		"--sample-offset=0",
		"7:7",
		"-",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestStartRejectsInvalidTrack(t *testing.T) {
	sup := New("cdparanoia", "/dev/sr0", 40, logging.NewNop())
	_, err := sup.Start(t.Context(), 0)
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("err = %v, want ErrSpawn", err)
	}
}

func TestStartMissingBinaryIsSpawnError(t *testing.T) {
	sup := New("no-such-extractor-binary", "/dev/sr0", 40, logging.NewNop())
	_, err := sup.Start(t.Context(), 1)
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("err = %v, want ErrSpawn", err)
	}
	if !strings.Contains(err.Error(), "no-such-extractor-binary") {
		t.Fatalf("error should name the binary: %v", err)
	}
}
