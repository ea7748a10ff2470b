package disc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// driveIO abstracts the CDROM ioctl surface so tests can run without hardware.
type driveIO interface {
	open(device string) (int, error)
	close(fd int) error
	status(fd int) (DriveStatus, error)
	tocHeader(fd int) (first, last uint8, err error)
	tocEntry(fd int, track uint8) (lba int32, ctrl uint8, err error)
}

// Reader queries the physical drive for its table of contents. Each call
// opens the device, issues the ioctls, and closes it again; the drive is
// never held open across calls.
type Reader struct {
	device  string
	timeout time.Duration
	io      driveIO
}

// NewReader constructs a Reader for the given device path. A TOC query that
// does not answer within timeout fails with ErrNoDisc.
func NewReader(device string, timeout time.Duration) *Reader {
	return newReader(device, timeout, unixDriveIO{})
}

func newReader(device string, timeout time.Duration, io driveIO) *Reader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reader{device: device, timeout: timeout, io: io}
}

// Device returns the configured device path.
func (r *Reader) Device() string { return r.device }

// Status reports the drive's tray/medium state without reading the TOC.
func (r *Reader) Status() (DriveStatus, error) {
	fd, err := r.io.open(r.device)
	if err != nil {
		return DriveStatusNoInfo, classifyOpenError(r.device, err)
	}
	defer r.io.close(fd) //nolint:errcheck

	status, err := r.io.status(fd)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("%w: drive status on %s: %v", ErrDriveIO, r.device, err)
	}
	return status, nil
}

// ReadTOC queries the disc's table of contents. The query is bounded by the
// reader timeout; expiry surfaces as ErrNoDisc so a wedged drive never hangs
// the caller.
func (r *Reader) ReadTOC(ctx context.Context) (*TOC, error) {
	type result struct {
		toc *TOC
		err error
	}
	ch := make(chan result, 1)
	go func() {
		toc, err := r.readTOC()
		ch <- result{toc, err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.toc, res.err
	case <-timer.C:
		return nil, fmt.Errorf("%w: toc query on %s timed out after %s", ErrNoDisc, r.device, r.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Reader) readTOC() (*TOC, error) {
	fd, err := r.io.open(r.device)
	if err != nil {
		return nil, classifyOpenError(r.device, err)
	}
	defer r.io.close(fd) //nolint:errcheck

	status, err := r.io.status(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: drive status on %s: %v", ErrDriveIO, r.device, err)
	}
	switch status {
	case DriveStatusNoDisc, DriveStatusTrayOpen, DriveStatusNotReady:
		return nil, fmt.Errorf("%w: drive reports %s", ErrNoDisc, status)
	}

	first, last, err := r.io.tocHeader(fd)
	if err != nil {
		return nil, classifyIoctlError("toc header", r.device, err)
	}
	if last < first {
		return nil, fmt.Errorf("%w: drive reports illegal track range %d..%d", ErrDriveIO, first, last)
	}

	starts := make([]int32, 0, int(last-first)+1)
	for track := first; track <= last; track++ {
		lba, ctrl, err := r.io.tocEntry(fd, track)
		if err != nil {
			return nil, classifyIoctlError("toc entry", r.device, err)
		}
		if ctrl&ctrlDataTrack != 0 {
			// Mixed-mode discs place data after audio; stop at the first
			// data track so track numbers stay contiguous from 1.
			break
		}
		starts = append(starts, lba)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("%w: disc has no audio tracks", ErrNoDisc)
	}

	leadout, _, err := r.io.tocEntry(fd, cdromLeadout)
	if err != nil {
		return nil, classifyIoctlError("toc leadout", r.device, err)
	}

	tracks := make([]TrackPosition, len(starts))
	for i, start := range starts {
		end := leadout
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		length := end - start
		if length < 0 {
			length = 0
		}
		tracks[i] = TrackPosition{
			Number:       int(first) + i,
			StartFrame:   start,
			LengthFrames: length,
		}
	}

	return &TOC{Tracks: tracks}, nil
}

func classifyOpenError(device string, err error) error {
	if errors.Is(err, unix.ENOMEDIUM) {
		return fmt.Errorf("%w: open %s: %v", ErrNoDisc, device, err)
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOENT) {
		return fmt.Errorf("%w: device %s does not exist", ErrDriveIO, device)
	}
	return fmt.Errorf("%w: open %s: %v", ErrDriveIO, device, err)
}

func classifyIoctlError(op, device string, err error) error {
	if errors.Is(err, unix.ENOMEDIUM) {
		return fmt.Errorf("%w: %s on %s: %v", ErrNoDisc, op, device, err)
	}
	return fmt.Errorf("%w: %s on %s: %v", ErrDriveIO, op, device, err)
}
