// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/compose"
	"github.com/sglab/samantha/services/recommender/config"
	"github.com/sglab/samantha/services/recommender/meta"
	"github.com/sglab/samantha/services/recommender/profile"
	"github.com/sglab/samantha/services/recommender/retrieval"
)

type stubComposer struct{}

func (stubComposer) Compose(context.Context, compose.Request) (string, error) {
	return "추천 멘트", nil
}

func (stubComposer) Answer(context.Context, string, []retrieval.Hit) (string, error) {
	return "답변", nil
}

func newTestServer(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.ResetIntentConfig()
	rules, err := config.GetIntentConfig(context.Background())
	require.NoError(t, err)

	cat := catalog.New([]catalog.Item{
		{Title: "라라랜드", Rating: 8.9, Emotion: "설렘, 낭만", Genre: "뮤지컬, 로맨스", Love: "첫사랑"},
		{Title: "인셉션", Rating: 9.0, Genre: "SF, 스릴러"},
	})
	extractor := meta.StaticExtractor{Meta: meta.UserMeta{}.
		Add(meta.Emotion, "설렘", "낭만").
		Add(meta.Genre, "로맨스", "뮤지컬").
		Add(meta.Love, "첫사랑")}

	service := NewService(cat, extractor, stubComposer{}, profile.NewMemoryStore(), rules, nil)

	router := gin.New()
	handlers := NewHandlers(service, nil)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	router.GET("/healthz", handlers.HandleHealth)
	return router, service
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	blob, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpointStartsAndContinuesSession(t *testing.T) {
	router, service := newTestServer(t)

	w := postJSON(t, router, "/v1/chat", ChatRequest{
		UserName: "지민",
		Message:  "설렘 가득한 로맨스 영화 추천해줘",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var first ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.NotEmpty(t, first.SessionID)
	require.Equal(t, "추천 멘트", first.Reply)
	require.Contains(t, first.Titles, "라라랜드")
	require.Equal(t, 1, service.SessionCount())

	// Continue the same session: completion turn selects a title.
	w = postJSON(t, router, "/v1/chat", ChatRequest{
		SessionID: first.SessionID,
		Message:   "라라랜드 완료",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var second ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.Equal(t, first.SessionID, second.SessionID)
	require.Equal(t, "라라랜드", second.SelectedTitle)
}

func TestChatEndpointTerminationRemovesSession(t *testing.T) {
	router, service := newTestServer(t)

	w := postJSON(t, router, "/v1/chat", ChatRequest{UserName: "지민", Message: "안녕"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = postJSON(t, router, "/v1/chat", ChatRequest{SessionID: resp.SessionID, Message: "종료"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Terminated)
	require.Equal(t, 0, service.SessionCount())
}

func TestChatEndpointRejectsMissingMessage(t *testing.T) {
	router, _ := newTestServer(t)
	w := postJSON(t, router, "/v1/chat", map[string]string{"user_name": "지민"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointRejectsNewSessionWithoutName(t *testing.T) {
	router, _ := newTestServer(t)
	w := postJSON(t, router, "/v1/chat", ChatRequest{Message: "추천해줘"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendationHistoryEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	postJSON(t, router, "/v1/chat", ChatRequest{
		UserName: "지민",
		Message:  "설렘 가득한 로맨스 영화 추천해줘",
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/users/지민/recommendations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Titles []string `json:"titles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body.Titles, "라라랜드")
}

func TestDislikeEndpoints(t *testing.T) {
	router, _ := newTestServer(t)

	w := postJSON(t, router, "/v1/users/지민/dislikes", DislikeRequest{Category: "genre", Value: "공포"})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/지민/dislikes", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var body struct {
		Dislikes []DislikeRequest `json:"dislikes"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &body))
	require.Len(t, body.Dislikes, 1)
	require.Equal(t, "공포", body.Dislikes[0].Value)
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
