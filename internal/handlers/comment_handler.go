package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/white/lead-management/internal/services"
)

// CommentHandler handles lead comment endpoints
type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment appends a comment to a lead's thread
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.comments.Add(r.Context(), caller, mux.Vars(r)["id"], req.Content)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    comment,
	})
}

// EditComment replaces a comment's content
func (h *CommentHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	comment, err := h.comments.Edit(r.Context(), caller, vars["id"], vars["commentId"], req.Content)
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    comment,
	})
}

// DeleteComment removes a comment
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.comments.Remove(r.Context(), caller, vars["id"], vars["commentId"]); err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// ListComments returns a lead's comment thread
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	comments, err := h.comments.List(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, h.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    comments,
	})
}
