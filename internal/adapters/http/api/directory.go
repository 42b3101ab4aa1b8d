package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pixelarc/rankboard/internal/domain/model"
)

// DirectoryAdmin defines the management surface for profiles and freezing.
type DirectoryAdmin interface {
	PutProfile(p model.Profile)
	Freeze(id string)
	Unfreeze(id string)
}

// DirectoryHandler handles profile and freeze management requests.
type DirectoryHandler struct {
	dir DirectoryAdmin
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(dir DirectoryAdmin) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

// HandlePutProfile handles POST /profiles requests.
func (h *DirectoryHandler) HandlePutProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_profile"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var p model.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(p.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing user_id")))
		return
	}
	h.dir.PutProfile(p)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// HandleFreeze handles POST and DELETE /freeze/{user_id} requests. POST
// freezes the account, DELETE lifts the freeze.
func (h *DirectoryHandler) HandleFreeze(w http.ResponseWriter, r *http.Request) {
	const op = "api.freeze"
	id := strings.TrimPrefix(r.URL.Path, "/freeze/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.dir.Freeze(id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "frozen"})
	case http.MethodDelete:
		h.dir.Unfreeze(id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "unfrozen"})
	default:
		http.NotFound(w, r)
	}
}
