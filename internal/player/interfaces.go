package player

import (
	"context"
	"io"
	"time"

	"discd/internal/disc"
	"discd/internal/extraction"
	"discd/internal/metadata"
)

// TOCReader reads the table of contents of the inserted disc.
type TOCReader interface {
	ReadTOC(ctx context.Context) (*disc.TOC, error)
}

// Process is a live extraction process owned by a session.
type Process interface {
	Output() io.ReadCloser
	Done() <-chan struct{}
	Err() error
	Track() int
	Terminated() bool
	Terminate(grace time.Duration)
}

// Supervisor spawns extraction processes.
type Supervisor interface {
	Start(ctx context.Context, track int) (Process, error)
}

// Resolver turns a table of contents into display metadata and persists
// user-supplied names.
type Resolver interface {
	Resolve(ctx context.Context, toc *disc.TOC) *metadata.Disc
	SetNames(ctx context.Context, toc *disc.TOC, artist, title string, trackTitles map[int]string) (*metadata.Disc, error)
}

type extractionSupervisor struct {
	sup *extraction.Supervisor
}

// WrapSupervisor adapts the concrete extraction supervisor to the Supervisor
// interface.
func WrapSupervisor(sup *extraction.Supervisor) Supervisor {
	return extractionSupervisor{sup: sup}
}

func (w extractionSupervisor) Start(ctx context.Context, track int) (Process, error) {
	proc, err := w.sup.Start(ctx, track)
	if err != nil {
		return nil, err
	}
	return proc, nil
}
