package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"discd/internal/disc"
	"discd/internal/logging"
	"discd/internal/metadata"
)

type fakeProcess struct {
	track   int
	exitErr error

	pr *io.PipeReader
	pw *io.PipeWriter

	done       chan struct{}
	doneOnce   sync.Once
	terminated atomic.Bool
}

// newFakeProcess emits data and then exits. A hanging process keeps its
// output open until Terminate, like a long track still being extracted.
func newFakeProcess(track int, data string, exitErr error, hang bool) *fakeProcess {
	pr, pw := io.Pipe()
	p := &fakeProcess{track: track, exitErr: exitErr, pr: pr, pw: pw, done: make(chan struct{})}
	go func() {
		_, _ = pw.Write([]byte(data))
		if !hang {
			_ = pw.Close()
			p.doneOnce.Do(func() { close(p.done) })
		}
	}()
	return p
}

func (p *fakeProcess) Output() io.ReadCloser { return p.pr }
func (p *fakeProcess) Done() <-chan struct{} { return p.done }
func (p *fakeProcess) Track() int            { return p.track }
func (p *fakeProcess) Terminated() bool      { return p.terminated.Load() }

func (p *fakeProcess) Err() error {
	select {
	case <-p.done:
		return p.exitErr
	default:
		return nil
	}
}

func (p *fakeProcess) Terminate(time.Duration) {
	select {
	case <-p.done:
	default:
		p.terminated.Store(true)
	}
	_ = p.pw.CloseWithError(errors.New("killed"))
	_ = p.pr.Close()
	p.doneOnce.Do(func() { close(p.done) })
}

type fakeSupervisor struct {
	mu      sync.Mutex
	factory func(track int) (Process, error)
	started []int
}

func (f *fakeSupervisor) Start(_ context.Context, track int) (Process, error) {
	f.mu.Lock()
	f.started = append(f.started, track)
	f.mu.Unlock()
	return f.factory(track)
}

func (f *fakeSupervisor) startedTracks() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int{}, f.started...)
}

type fakeReader struct {
	mu    sync.Mutex
	toc   *disc.TOC
	err   error
	reads int
}

func (f *fakeReader) ReadTOC(context.Context) (*disc.TOC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.toc, nil
}

func (f *fakeReader) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func threeTrackTOC() *disc.TOC {
	return &disc.TOC{Tracks: []disc.TrackPosition{
		{Number: 1, StartFrame: 150, LengthFrames: 180 * disc.FramesPerSecond},
		{Number: 2, StartFrame: 13650, LengthFrames: 200 * disc.FramesPerSecond},
		{Number: 3, StartFrame: 28650, LengthFrames: 150 * disc.FramesPerSecond},
	}}
}

func testResolver(t *testing.T) Resolver {
	t.Helper()
	store, err := metadata.OpenPath(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("open library: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return metadata.NewResolver(store, logging.NewNop())
}

func newTestPlayer(t *testing.T, reader TOCReader, factory func(track int) (Process, error)) (*Player, *fakeSupervisor) {
	t.Helper()
	sup := &fakeSupervisor{factory: factory}
	p := New(reader, sup, testResolver(t), 100*time.Millisecond, 50*time.Millisecond, logging.NewNop())
	return p, sup
}

func trackData(track int) string {
	return fmt.Sprintf("wav-%d|", track)
}

func TestPlayStreamsAcrossWholeDisc(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	p, sup := newTestPlayer(t, reader, func(track int) (Process, error) {
		return newFakeProcess(track, trackData(track), nil, false), nil
	})

	session, err := p.Play(context.Background(), 2)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	data, err := io.ReadAll(session)
	if err != nil {
		t.Fatalf("reading session: %v", err)
	}
	if got, want := string(data), trackData(2)+trackData(3); got != want {
		t.Fatalf("stream = %q, want %q", got, want)
	}
	if got := sup.startedTracks(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("started tracks = %v, want [2 3]", got)
	}
	if status := p.Status(); status.State != StateIdle {
		t.Fatalf("state after disc end = %s, want idle", status.State)
	}
}

func TestPlayOutOfRangeLeavesSessionRunning(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	var first *fakeProcess
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		first = newFakeProcess(track, trackData(track), nil, true)
		return first, nil
	})

	session, err := p.Play(context.Background(), 1)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}

	if _, err := p.Play(context.Background(), 99); !errors.Is(err, ErrTrackOutOfRange) {
		t.Fatalf("err = %v, want ErrTrackOutOfRange", err)
	}
	if first.Terminated() {
		t.Fatal("rejected request must not disturb the running session")
	}
	status := p.Status()
	if status.State != StateStreaming || status.Track != 1 || status.SessionID != session.ID() {
		t.Fatalf("status = %+v, want original session streaming", status)
	}
	p.Stop()
}

func TestPlayReplacesRunningSession(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	procs := make(map[int]*fakeProcess)
	var mu sync.Mutex
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		mu.Lock()
		defer mu.Unlock()
		if track == 2 {
			old := procs[1]
			select {
			case <-old.Done():
			default:
				return nil, errors.New("track 1 process still owned the drive")
			}
		}
		proc := newFakeProcess(track, trackData(track), nil, true)
		procs[track] = proc
		return proc, nil
	})

	first, err := p.Play(context.Background(), 1)
	if err != nil {
		t.Fatalf("Play 1: %v", err)
	}
	second, err := p.Play(context.Background(), 2)
	if err != nil {
		t.Fatalf("Play 2: %v", err)
	}
	if first.ID() == second.ID() {
		t.Fatal("replacement must create a new session")
	}
	if !procs[1].Terminated() {
		t.Fatal("old process should have been terminated")
	}
	if status := p.Status(); status.Track != 2 {
		t.Fatalf("status track = %d, want 2", status.Track)
	}
	p.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	var proc *fakeProcess
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		proc = newFakeProcess(track, trackData(track), nil, true)
		return proc, nil
	})

	p.Stop() // nothing running

	if _, err := p.Play(context.Background(), 1); err != nil {
		t.Fatalf("Play: %v", err)
	}
	p.Stop()
	if !proc.Terminated() {
		t.Fatal("Stop should terminate the extraction process")
	}
	if status := p.Status(); status.State != StateIdle {
		t.Fatalf("state = %s, want idle", status.State)
	}
	p.Stop() // second stop is a no-op
}

func TestClientDisconnectTearsDownSession(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	var proc *fakeProcess
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		proc = newFakeProcess(track, trackData(track), nil, true)
		return proc, nil
	})

	session, err := p.Play(context.Background(), 1)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !proc.Terminated() {
		t.Fatal("Close should terminate the extraction process")
	}
	if status := p.Status(); status.State != StateIdle {
		t.Fatalf("state = %s, want idle", status.State)
	}

	buf := make([]byte, 8)
	if _, err := session.Read(buf); err != io.EOF {
		t.Fatalf("read after close = %v, want io.EOF", err)
	}
}

func TestAbnormalExitSurfacesError(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		return newFakeProcess(track, "partial", errors.New("exit status 2"), false), nil
	})

	session, err := p.Play(context.Background(), 1)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	data, err := io.ReadAll(session)
	if err == nil {
		t.Fatal("expected error after abnormal process exit")
	}
	if !strings.Contains(err.Error(), "track 1") {
		t.Fatalf("error should name the track: %v", err)
	}
	if string(data) != "partial" {
		t.Fatalf("data = %q, want the bytes written before death", data)
	}

	_ = session.Close()
	if status := p.Status(); status.State != StateIdle {
		t.Fatalf("state = %s, want idle after close", status.State)
	}
}

func TestAdvanceSpawnFailureEndsSession(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		if track == 3 {
			return nil, errors.New("drive busy")
		}
		return newFakeProcess(track, trackData(track), nil, false), nil
	})

	session, err := p.Play(context.Background(), 2)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	data, err := io.ReadAll(session)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != trackData(2) {
		t.Fatalf("data = %q, want only track 2", data)
	}
	if status := p.Status(); status.State != StateIdle {
		t.Fatalf("state = %s, want idle after failed advance", status.State)
	}
}

func TestPlaySpawnFailure(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	spawnErr := errors.New("binary missing")
	p, _ := newTestPlayer(t, reader, func(int) (Process, error) {
		return nil, spawnErr
	})

	if _, err := p.Play(context.Background(), 1); !errors.Is(err, spawnErr) {
		t.Fatalf("err = %v, want spawn failure", err)
	}
	if status := p.Status(); status.State != StateIdle {
		t.Fatalf("state = %s, want idle", status.State)
	}
}

func TestInfoNoDisc(t *testing.T) {
	reader := &fakeReader{err: disc.ErrNoDisc}
	p, _ := newTestPlayer(t, reader, nil)
	if _, err := p.Info(context.Background()); !errors.Is(err, disc.ErrNoDisc) {
		t.Fatalf("err = %v, want ErrNoDisc", err)
	}
}

func TestInfoCachesTOC(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	p, _ := newTestPlayer(t, reader, nil)
	ctx := context.Background()

	if _, err := p.Info(ctx); err != nil {
		t.Fatalf("Info: %v", err)
	}
	if _, err := p.Info(ctx); err != nil {
		t.Fatalf("Info: %v", err)
	}
	if got := reader.readCount(); got != 1 {
		t.Fatalf("drive reads = %d, want 1 within the cache window", got)
	}

	p.InvalidateCache()
	if _, err := p.Info(ctx); err != nil {
		t.Fatalf("Info: %v", err)
	}
	if got := reader.readCount(); got != 2 {
		t.Fatalf("drive reads = %d, want 2 after invalidation", got)
	}
}

func TestInfoUsesSessionTOCWhileStreaming(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	p, _ := newTestPlayer(t, reader, func(track int) (Process, error) {
		return newFakeProcess(track, trackData(track), nil, true), nil
	})
	ctx := context.Background()

	if _, err := p.Play(ctx, 1); err != nil {
		t.Fatalf("Play: %v", err)
	}
	before := reader.readCount()
	info, err := p.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if reader.readCount() != before {
		t.Fatal("Info during playback must not touch the drive")
	}
	if len(info.Tracks) != 3 {
		t.Fatalf("tracks = %d, want 3", len(info.Tracks))
	}
	p.Stop()
}

func TestRenamePersistsNames(t *testing.T) {
	reader := &fakeReader{toc: threeTrackTOC()}
	p, _ := newTestPlayer(t, reader, nil)
	ctx := context.Background()

	got, err := p.Rename(ctx, "Nirvana", "Nevermind", map[int]string{1: "Smells Like Teen Spirit"})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got.Artist != "Nirvana" || got.Tracks[0].Title != "Smells Like Teen Spirit" {
		t.Fatalf("resolved = %+v", got)
	}

	p.InvalidateCache()
	info, err := p.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if !info.Named || info.Title != "Nevermind" {
		t.Fatalf("info = %+v, want stored names", info)
	}
}
