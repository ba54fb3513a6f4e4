package api

import (
	"net/http"

	"github.com/pmackinlay/taskboard/internal/api/shared"
	"github.com/pmackinlay/taskboard/internal/service"
)

// CommentHandler handles comment-related API requests.
type CommentHandler struct {
	comments service.CommentService
}

// NewCommentHandler creates a new CommentHandler with the given dependencies.
func NewCommentHandler(comments service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List handles GET /comments.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListComments(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, newCommentResponse(c))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /comments. The authenticated user becomes the
// comment's author.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := h.comments.CreateComment(r.Context(), userID, req.TaskID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newCommentResponse(comment))
}

// Get handles GET /comments/{id}.
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	commentID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	comment, err := h.comments.GetComment(r.Context(), commentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newCommentResponse(comment))
}

// Delete handles DELETE /comments/{id}. Only members of the admin group may
// delete comments; everyone else gets a 400 and the comment survives.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(r.Context(), userID, commentID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
