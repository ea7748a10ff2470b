package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"discd/internal/disc"
	"discd/internal/logging"
)

// Placeholder names for discs the library does not know.
const (
	DefaultArtist = "Unknown Artist"
	DefaultAlbum  = "Audio CD"
)

type library interface {
	Lookup(ctx context.Context, fingerprint string) (*Names, error)
	Save(ctx context.Context, names *Names) error
}

// Resolver merges stored disc names with placeholder defaults.
type Resolver struct {
	store  library
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given library store.
func NewResolver(store *Store, logger *slog.Logger) *Resolver {
	return newResolver(store, logger)
}

func newResolver(store library, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logging.NewComponentLogger(logger, "metadata"),
	}
}

// Resolve builds the display view of a disc from its table of contents.
// Library faults degrade to placeholder names rather than failing the disc.
func (r *Resolver) Resolve(ctx context.Context, toc *disc.TOC) *Disc {
	fingerprint := toc.Fingerprint()

	resolved := &Disc{
		Fingerprint: fingerprint,
		Artist:      DefaultArtist,
		Title:       DefaultAlbum,
		Tracks:      make([]Track, 0, toc.TrackCount()),
	}

	var stored *Names
	if r.store != nil {
		names, err := r.store.Lookup(ctx, fingerprint)
		switch {
		case err == nil:
			stored = names
			resolved.Named = true
			if names.Artist != "" {
				resolved.Artist = names.Artist
			}
			if names.Title != "" {
				resolved.Title = names.Title
			}
		case errors.Is(err, ErrNotFound):
		default:
			r.logger.Warn("library lookup failed, using placeholders",
				logging.String(logging.FieldDiscID, fingerprint),
				logging.Error(err),
			)
		}
	}

	for _, position := range toc.Tracks {
		title := fmt.Sprintf("Track %d", position.Number)
		if stored != nil {
			if name, ok := stored.Tracks[position.Number]; ok && name != "" {
				title = name
			}
		}
		resolved.Tracks = append(resolved.Tracks, Track{
			Number:          position.Number,
			Title:           title,
			DurationSeconds: position.DurationSeconds(),
		})
	}
	return resolved
}

// SetNames stores user-supplied names for the disc and returns the refreshed
// view. Empty fields keep their previous or placeholder values; track numbers
// outside the disc's range are rejected.
func (r *Resolver) SetNames(ctx context.Context, toc *disc.TOC, artist, title string, trackTitles map[int]string) (*Disc, error) {
	if r.store == nil {
		return nil, errors.New("no library store configured")
	}

	for number := range trackTitles {
		if number < 1 || number > toc.TrackCount() {
			return nil, fmt.Errorf("track %d not on disc (%d tracks)", number, toc.TrackCount())
		}
	}

	fingerprint := toc.Fingerprint()
	names, err := r.store.Lookup(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		names = &Names{Fingerprint: fingerprint, Tracks: make(map[int]string)}
	}

	if cleaned := cleanName(artist); cleaned != "" {
		names.Artist = cleaned
	}
	if cleaned := cleanName(title); cleaned != "" {
		names.Title = cleaned
	}
	for number, trackTitle := range trackTitles {
		if cleaned := cleanName(trackTitle); cleaned != "" {
			names.Tracks[number] = cleaned
		}
	}

	if err := r.store.Save(ctx, names); err != nil {
		return nil, fmt.Errorf("save disc names: %w", err)
	}

	r.logger.Info("disc names updated",
		logging.String(logging.FieldDiscID, fingerprint),
		logging.Int("tracks_named", len(names.Tracks)),
	)
	return r.Resolve(ctx, toc), nil
}
