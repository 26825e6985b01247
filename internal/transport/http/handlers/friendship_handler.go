package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/service"
	"github.com/Samuliej/mobilechat/internal/transport/http/middleware"
)

type FriendshipHandler struct {
	friendService *service.FriendshipService
}

func NewFriendshipHandler(friendService *service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendService: friendService}
}

func (h *FriendshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Username == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USERNAME", "Username is required")
		return
	}

	req, err := h.friendService.SendRequest(r.Context(), userID, input.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCannotRequestSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_REQUEST_SELF", "Cannot send a request to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrRequestAlreadyExists):
			writeError(w, http.StatusConflict, "ALREADY_REQUESTED", "A pending request already exists")
		case errors.Is(err, service.ErrAlreadyFriends):
			writeError(w, http.StatusConflict, "ALREADY_FRIENDS", "You are already friends")
		default:
			log.Printf("ERROR send friend request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (h *FriendshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list friends: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, friends)
}

func (h *FriendshipHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.friendService.ListIncoming(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list incoming requests: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *FriendshipHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.friendService.ListOutgoing(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list outgoing requests: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *FriendshipHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	f, err := h.friendService.AcceptRequest(r.Context(), userID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, service.ErrNotRequestReceiver):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the receiver can accept this request")
		case errors.Is(err, service.ErrRequestNotPending):
			writeError(w, http.StatusConflict, "NOT_PENDING", "Request is no longer pending")
		default:
			log.Printf("ERROR accept friend request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, f)
}

func (h *FriendshipHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	if err := h.friendService.DeclineRequest(r.Context(), userID, requestID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, service.ErrNotRequestReceiver):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the receiver can decline this request")
		case errors.Is(err, service.ErrRequestNotPending):
			writeError(w, http.StatusConflict, "NOT_PENDING", "Request is no longer pending")
		default:
			log.Printf("ERROR decline friend request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendshipHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	if err := h.friendService.CancelRequest(r.Context(), userID, requestID); err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Request not found")
		case errors.Is(err, service.ErrNotRequestSender):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender can cancel this request")
		case errors.Is(err, service.ErrRequestNotPending):
			writeError(w, http.StatusConflict, "NOT_PENDING", "Request is no longer pending")
		default:
			log.Printf("ERROR cancel friend request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendshipHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	otherUserID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.friendService.RemoveFriend(r.Context(), userID, otherUserID); err != nil {
		if errors.Is(err, service.ErrFriendshipNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Friendship not found")
		} else {
			log.Printf("ERROR remove friend: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
