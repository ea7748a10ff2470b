package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"discd/internal/logging"
)

// ErrSpawn indicates the extraction process could not be started: binary
// missing, device busy, or the drive unavailable.
var ErrSpawn = errors.New("extraction spawn failed")

// Supervisor launches and owns cdparanoia processes for single tracks.
type Supervisor struct {
	binary    string
	device    string
	neverSkip int
	logger    *slog.Logger
}

// New constructs a Supervisor for the given extraction binary and drive
// device.
func New(binary, device string, neverSkip int, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		binary:    binary,
		device:    device,
		neverSkip: neverSkip,
		logger:    logging.NewComponentLogger(logger, "extraction"),
	}
}

// Start spawns an extraction process for the given 1-based track number and
// returns a live, exclusively-owned handle streaming WAV bytes on its output.
// The caller is responsible for validating the track against the disc's TOC;
// Start only rejects numbers no disc could have.
func (s *Supervisor) Start(ctx context.Context, track int) (*Process, error) {
	if track < 1 {
		return nil, fmt.Errorf("%w: invalid track number %d", ErrSpawn, track)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := exec.LookPath(s.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", ErrSpawn, s.binary, err)
	}

	args := s.buildArgs(track)
	proc, err := startProcess(path, args, track, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	s.logger.Info("extraction process started",
		logging.Int(logging.FieldTrack, track),
		logging.String(logging.FieldDevice, s.device),
		logging.Int("pid", proc.PID()),
	)
	return proc, nil
}

func (s *Supervisor) buildArgs(track int) []string {
	span := strconv.Itoa(track) + ":" + strconv.Itoa(track)
	return []string{
		"--force-cdrom-device=" + s.device,
		"--verbose",
		"--output-wav",
		"--never-skip=" + strconv.Itoa(s.neverSkip),
		"--sample-offset=0",
		span,
		"-",
	}
}
