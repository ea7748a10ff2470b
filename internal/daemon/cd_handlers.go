package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"discd/internal/disc"
	"discd/internal/extraction"
	"discd/internal/logging"
	"discd/internal/player"
)

const streamBufferSize = 32 * 1024

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	info, err := s.daemon.player.Info(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, disc.ErrNoDisc):
			s.writeError(w, http.StatusNotFound, "no disc in drive")
		case errors.Is(err, disc.ErrDriveIO):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *apiServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trackStr := strings.TrimPrefix(r.URL.Path, "/api/cd/play/")
	if trackStr == "" || strings.Contains(trackStr, "/") {
		s.writeError(w, http.StatusNotFound, "track not found")
		return
	}
	track, err := strconv.Atoi(trackStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid track number")
		return
	}

	session, err := s.daemon.player.Play(r.Context(), track)
	if err != nil {
		switch {
		case errors.Is(err, player.ErrTrackOutOfRange):
			s.writeError(w, http.StatusNotFound, "track not on disc")
		case errors.Is(err, disc.ErrNoDisc):
			s.writeError(w, http.StatusConflict, "no disc in drive")
		case errors.Is(err, extraction.ErrSpawn), errors.Is(err, disc.ErrDriveIO):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer session.Close()

	// Tear the session down as soon as the client goes away, even if the
	// extraction process is stalled and nothing is flowing.
	go func() {
		<-r.Context().Done()
		session.Close()
	}()

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Session-ID", session.ID())
	w.Header().Set("X-Track", strconv.Itoa(track))
	w.WriteHeader(http.StatusOK)

	s.stream(w, session)
}

// stream copies session audio to the client, flushing each chunk so playback
// starts immediately instead of waiting on response buffering. The session is
// torn down by the deferred Close when the client disconnects.
func (s *apiServer) stream(w http.ResponseWriter, session *player.Session) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, streamBufferSize)
	var sent int64

	for {
		n, err := session.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				s.logger.Debug("client disconnected",
					logging.String(logging.FieldSessionID, session.ID()),
					logging.Int64("bytes_sent", sent),
				)
				return
			}
			sent += int64(n)
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("stream ended abnormally",
					logging.String(logging.FieldSessionID, session.ID()),
					logging.Int64("bytes_sent", sent),
					logging.Error(err),
				)
			}
			return
		}
	}
}

// handleStop accepts GET as well as POST so simple frontends can hit it with
// a plain link or fetch without preflight.
func (s *apiServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.player.Stop()
	s.writeJSON(w, http.StatusOK, s.daemon.player.Status())
}

func (s *apiServer) handleEject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.Eject(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.player.Status())
}

type metadataRequest struct {
	Artist string            `json:"artist"`
	Title  string            `json:"title"`
	Tracks map[string]string `json:"tracks"`
}

func (s *apiServer) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trackTitles := make(map[int]string, len(req.Tracks))
	for key, title := range req.Tracks {
		number, err := strconv.Atoi(key)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid track number "+key)
			return
		}
		trackTitles[number] = title
	}

	info, err := s.daemon.player.Rename(r.Context(), req.Artist, req.Title, trackTitles)
	if err != nil {
		switch {
		case errors.Is(err, disc.ErrNoDisc):
			s.writeError(w, http.StatusNotFound, "no disc in drive")
		case errors.Is(err, disc.ErrDriveIO):
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}
