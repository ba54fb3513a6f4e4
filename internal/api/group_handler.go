package api

import (
	"net/http"

	"github.com/pmackinlay/taskboard/internal/api/shared"
	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/store"
)

// GroupHandler handles group management API requests. Groups gate
// privileged operations; membership in the admin group is what allows
// comment deletion.
type GroupHandler struct {
	groups store.GroupStore
}

// NewGroupHandler creates a new GroupHandler with the given dependencies.
func NewGroupHandler(groups store.GroupStore) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// List handles GET /groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list groups")
		return
	}

	resp := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, newGroupResponse(g))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	group, err := domain.NewGroup(req.Name)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid group: "+err.Error())
		return
	}

	if err := h.groups.Create(r.Context(), group); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newGroupResponse(group))
}

// Get handles GET /groups/{id}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	group, err := h.groups.GetByID(r.Context(), groupID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newGroupResponse(group))
}

// Delete handles DELETE /groups/{id}.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.groups.Delete(r.Context(), groupID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /groups/{id}/members, adding a user to the group.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.groups.AddMember(r.Context(), groupID, req.UserID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusOK)
}
