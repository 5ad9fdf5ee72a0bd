package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handvox/internal/store"
)

// SessionHandler serves the action journal read-only.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/actions.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
		h.get(w, r, id)
	case "actions":
		h.actions(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type sessionResponse struct {
	ID        string `json:"id"`
	GridSize  int    `json:"grid_size"`
	StartedAt string `json:"started_at"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type actionResponse struct {
	ID         int64  `json:"id"`
	Gesture    string `json:"gesture"`
	Action     string `json:"action"`
	Status     string `json:"status"`
	VoxelCount int    `json:"voxel_count"`
	CreatedAt  string `json:"created_at"`
}

type listActionsResponse struct {
	SessionID string           `json:"session_id"`
	Actions   []actionResponse `json:"actions"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		GridSize:  s.GridSize,
		StartedAt: formatTime(s.StartedAt),
	}
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	response := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// actions handles GET /api/sessions/{id}/actions.
func (h *SessionHandler) actions(w http.ResponseWriter, r *http.Request, id string) {
	entries, err := h.store.Actions().ListBySession(id, queryLimit(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list actions")
		return
	}

	response := listActionsResponse{SessionID: id, Actions: make([]actionResponse, 0, len(entries))}
	for _, e := range entries {
		response.Actions = append(response.Actions, actionResponse{
			ID:         e.ID,
			Gesture:    e.Gesture,
			Action:     e.Action,
			Status:     e.Status,
			VoxelCount: e.VoxelCount,
			CreatedAt:  formatTime(e.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
