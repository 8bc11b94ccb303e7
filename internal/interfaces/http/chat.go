package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cascadeconnect/internal/domain/chat"
	"cascadeconnect/internal/shared/middleware"
)

type ChatHandler struct {
	chatService *chat.Service
}

func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Request DTOs

type CreateChannelRequest struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Participants []string `json:"participants"`
}

type PostMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
	Mentions    []string `json:"mentions"`
}

type EditMessageRequest struct {
	Content string `json:"content"`
}

type SetMutedRequest struct {
	Muted bool `json:"muted"`
}

// HandleChannels routes channel collection requests
func (h *ChatHandler) HandleChannels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListChannels(w, r)
	case http.MethodPost:
		h.handleCreateChannel(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleChannelMessages routes message collection requests for a channel
func (h *ChatHandler) HandleChannelMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListMessages(w, r)
	case http.MethodPost:
		h.handlePostMessage(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMessageByID routes edit/delete requests for a specific message
func (h *ChatHandler) HandleMessageByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.handleEditMessage(w, r)
	case http.MethodDelete:
		h.handleDeleteMessage(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleJoinChannel adds the caller to a public channel
func (h *ChatHandler) HandleJoinChannel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.chatService.JoinChannel(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		h.writeChatError(w, "join channel", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkRead updates the caller's read position in a channel
func (h *ChatHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.chatService.MarkRead(r.Context(), r.PathValue("id"), userID); err != nil {
		h.writeChatError(w, "mark read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMute toggles notification muting for a channel membership
func (h *ChatHandler) HandleMute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SetMutedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.chatService.SetMuted(r.Context(), r.PathValue("id"), userID, req.Muted); err != nil {
		h.writeChatError(w, "set muted", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) handleListChannels(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	channels, err := h.chatService.ListChannels(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing channels for user %s: %v", userID, err)
		http.Error(w, "Failed to list channels", http.StatusInternalServerError)
		return
	}

	if channels == nil {
		channels = []*chat.Channel{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(channels)
}

func (h *ChatHandler) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create channel request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := chat.CreateChannelParams{
		Name:         req.Name,
		Type:         req.Type,
		CreatedBy:    userID,
		Participants: req.Participants,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	channel, err := h.chatService.CreateChannel(r.Context(), params)
	if err != nil {
		log.Printf("Error creating channel for user %s: %v", userID, err)
		http.Error(w, "Failed to create channel", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(channel)
}

func (h *ChatHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		h.writeChatError(w, "list messages", err)
		return
	}

	if messages == nil {
		messages = []*chat.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

func (h *ChatHandler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding post message request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := chat.PostMessageParams{
		ChannelID:   r.PathValue("id"),
		SenderID:    userID,
		Content:     req.Content,
		Attachments: req.Attachments,
		Mentions:    req.Mentions,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.PostMessage(r.Context(), params)
	if err != nil {
		h.writeChatError(w, "post message", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (h *ChatHandler) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.EditMessage(r.Context(), r.PathValue("id"), userID, req.Content)
	if err != nil {
		h.writeChatError(w, "edit message", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msg)
}

func (h *ChatHandler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), r.PathValue("id"), userID); err != nil {
		h.writeChatError(w, "delete message", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeChatError maps domain errors onto HTTP statuses.
func (h *ChatHandler) writeChatError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrChannelNotFound):
		http.Error(w, "Channel not found", http.StatusNotFound)
	case errors.Is(err, chat.ErrMessageNotFound):
		http.Error(w, "Message not found", http.StatusNotFound)
	case errors.Is(err, chat.ErrNotMember):
		http.Error(w, "Not a member of this channel", http.StatusForbidden)
	case errors.Is(err, chat.ErrNotSender):
		http.Error(w, "Message does not belong to you", http.StatusForbidden)
	case errors.Is(err, chat.ErrInvalidChannelType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error during %s: %v", op, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
