package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/service"
	"github.com/Samuliej/mobilechat/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Text     string  `json:"text"`
		ImageURL *string `json:"image_url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	post, err := h.feedService.CreatePost(r.Context(), userID, input.Text, input.ImageURL)
	if err != nil {
		if errors.Is(err, service.ErrEmptyPost) {
			writeError(w, http.StatusBadRequest, "MISSING_TEXT", "Post text is required")
		} else {
			log.Printf("ERROR create post: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *FeedHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	post, err := h.feedService.GetPost(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			log.Printf("ERROR get post: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *FeedHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.feedService.DeletePost(r.Context(), userID, postID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only delete your own posts")
		default:
			log.Printf("ERROR delete post: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	size := 20
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 50 {
			size = s
		}
	}

	resp, err := h.feedService.ListFeed(r.Context(), userID, page, size)
	if err != nil {
		log.Printf("ERROR list feed: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *FeedHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	post, err := h.feedService.LikePost(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			log.Printf("ERROR like post: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *FeedHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	post, err := h.feedService.UnlikePost(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			log.Printf("ERROR unlike post: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	comment, err := h.feedService.AddComment(r.Context(), userID, postID, input.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyComment):
			writeError(w, http.StatusBadRequest, "MISSING_TEXT", "Comment text is required")
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		default:
			log.Printf("ERROR add comment: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *FeedHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	comments, err := h.feedService.ListComments(r.Context(), postID)
	if err != nil {
		log.Printf("ERROR list comments: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, comments)
}
