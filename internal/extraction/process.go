package extraction

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"discd/internal/logging"
)

// Process is a live extraction subprocess. Output carries the decoded WAV
// stream; Done closes once the process has been reaped, after which Err
// reports the exit result.
type Process struct {
	track  int
	cmd    *exec.Cmd
	stdout *os.File
	logger *slog.Logger

	done chan struct{}
	err  error

	termOnce   sync.Once
	terminated atomic.Bool
}

// startProcess launches the binary with stdout redirected through a pipe whose
// read end outlives Wait. exec's own StdoutPipe is closed by Wait, which would
// cut off bytes still buffered in the kernel while a slow reader drains them.
func startProcess(path string, args []string, track int, logger *slog.Logger) (*Process, error) {
	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, args...)
	cmd.Stdout = writeEnd

	stderr, err := cmd.StderrPipe()
	if err != nil {
		readEnd.Close()
		writeEnd.Close()
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		readEnd.Close()
		writeEnd.Close()
		return nil, err
	}
	// The child holds its own copy of the write end now.
	writeEnd.Close()

	p := &Process{
		track:  track,
		cmd:    cmd,
		stdout: readEnd,
		logger: logger,
		done:   make(chan struct{}),
	}
	go p.reap(stderr)
	return p, nil
}

// reap drains diagnostics, waits for exit, and publishes the result.
func (p *Process) reap(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		p.logger.Debug(line, logging.Int(logging.FieldTrack, p.track))
	}

	p.err = p.cmd.Wait()
	close(p.done)
}

// Output returns the WAV byte stream. Reads return io.EOF once the process
// exits and the pipe drains; Close unblocks a pending Read.
func (p *Process) Output() io.ReadCloser {
	return p.stdout
}

// Done closes when the process has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err returns the exit result. Only valid after Done has closed. A process
// killed by Terminate reports the signal-death error from Wait.
func (p *Process) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Track returns the 1-based track number this process extracts.
func (p *Process) Track() int {
	return p.track
}

// PID returns the operating system process id.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Terminated reports whether Terminate has been invoked on this process.
func (p *Process) Terminated() bool {
	return p.terminated.Load()
}

// Terminate stops the process: SIGTERM first, then SIGKILL if it has not
// exited within grace. It blocks until the process is reaped and always
// closes the output pipe. Safe to call multiple times and after natural exit.
func (p *Process) Terminate(grace time.Duration) {
	p.termOnce.Do(func() {
		select {
		case <-p.done:
		default:
			p.terminated.Store(true)
			if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
				p.logger.Debug("sigterm failed, process likely gone",
					logging.Int(logging.FieldTrack, p.track),
					logging.Error(err),
				)
			}
			timer := time.NewTimer(grace)
			select {
			case <-p.done:
				timer.Stop()
			case <-timer.C:
				p.logger.Warn("extraction process ignored SIGTERM, killing",
					logging.Int(logging.FieldTrack, p.track),
					logging.Int("pid", p.PID()),
				)
				_ = p.cmd.Process.Kill()
				<-p.done
			}
		}
	})
	<-p.done
	p.stdout.Close()
}
