// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package recommender

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sglab/samantha/services/recommender/profile"
	"github.com/sglab/samantha/services/recommender/routing"
)

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	// SessionID continues an existing conversation. Empty starts a new one.
	SessionID string `json:"session_id"`

	// UserName is required when starting a new conversation.
	UserName string `json:"user_name"`

	// Message is the user utterance.
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the body of a successful POST /v1/chat.
type ChatResponse struct {
	SessionID     string         `json:"session_id"`
	Reply         string         `json:"reply"`
	Branch        routing.Branch `json:"branch"`
	Titles        []string       `json:"titles,omitempty"`
	SelectedTitle string         `json:"selected_title,omitempty"`
	Terminated    bool           `json:"terminated"`
}

// DislikeRequest is the body of POST /v1/users/:name/dislikes.
type DislikeRequest struct {
	Category string `json:"category" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

// Handlers adapts the Service to Gin.
type Handlers struct {
	service *Service
	logger  *slog.Logger
}

// NewHandlers creates the HTTP handlers. A nil logger selects slog.Default().
func NewHandlers(service *Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{service: service, logger: logger}
}

// HandleChat handles POST /v1/chat.
//
// Description:
//
//	Routes one conversational turn. With no session_id a new session is
//	started for user_name and the turn runs in it; the returned session_id
//	continues the conversation.
//
// Response:
//
//	200 OK: ChatResponse
//	400 Bad Request: malformed body or missing user_name on a new session
func (h *Handlers) HandleChat(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With(slog.String("request_id", requestID))

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "message is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.service.Chat(c.Request.Context(), req.SessionID, req.UserName, req.Message)
	if err != nil {
		logger.Warn("chat turn rejected", slog.Any("error", err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "SESSION_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID:     result.SessionID,
		Reply:         result.Reply,
		Branch:        result.Branch,
		Titles:        result.Titles,
		SelectedTitle: result.SelectedTitle,
		Terminated:    result.Terminated,
	})
}

// HandleRecommendationHistory handles GET /v1/users/:name/recommendations:
// every title ever recommended to the named user.
func (h *Handlers) HandleRecommendationHistory(c *gin.Context) {
	userID, ok := h.resolveUser(c)
	if !ok {
		return
	}
	titles, err := h.service.Store().PreviousTitles(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "loading recommendation history failed",
			Code:  "STORE_ERROR",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

// HandleListDislikes handles GET /v1/users/:name/dislikes.
func (h *Handlers) HandleListDislikes(c *gin.Context) {
	userID, ok := h.resolveUser(c)
	if !ok {
		return
	}
	dislikes, err := h.service.Store().Dislikes(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "loading dislikes failed",
			Code:  "STORE_ERROR",
		})
		return
	}
	out := make([]DislikeRequest, 0, len(dislikes))
	for _, d := range dislikes {
		out = append(out, DislikeRequest{Category: d.Category, Value: d.Value})
	}
	c.JSON(http.StatusOK, gin.H{"dislikes": out})
}

// HandleAddDislike handles POST /v1/users/:name/dislikes: registers a
// (category, value) pair the user never wants recommended again.
func (h *Handlers) HandleAddDislike(c *gin.Context) {
	var req DislikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "category and value are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	userID, ok := h.resolveUser(c)
	if !ok {
		return
	}
	d := profile.Dislike{Category: req.Category, Value: req.Value}
	if err := h.service.Store().AddDislike(c.Request.Context(), userID, d); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "storing dislike failed",
			Code:  "STORE_ERROR",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.service.SessionCount(),
	})
}

func (h *Handlers) resolveUser(c *gin.Context) (string, bool) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user name is required",
			Code:  "MISSING_PARAMETER",
		})
		return "", false
	}
	userID, err := h.service.Store().GetOrCreateUser(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "resolving user failed",
			Code:  "STORE_ERROR",
		})
		return "", false
	}
	return userID, true
}

// getOrCreateRequestID reads the caller's X-Request-ID, minting one when
// absent, so log lines from one request correlate.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Header("X-Request-ID", id)
	return id
}
