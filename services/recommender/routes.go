// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package recommender

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the recommender endpoints with the router group.
//
// Description:
//
//	Registers all /v1 endpoints with the given Gin router group. The
//	group should already have any required middleware applied.
//
// Endpoints:
//
//	POST /v1/chat - Route one conversational turn
//	GET  /v1/users/:name/recommendations - Recommendation history
//	GET  /v1/users/:name/dislikes - List disliked (category, value) pairs
//	POST /v1/users/:name/dislikes - Register a dislike
//
// Example:
//
//	service := recommender.NewService(cat, extractor, composer, store, rules, nil)
//	handlers := recommender.NewHandlers(service, nil)
//
//	v1 := router.Group("/v1")
//	recommender.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.POST("/chat", handlers.HandleChat)

	users := rg.Group("/users")
	{
		users.GET("/:name/recommendations", handlers.HandleRecommendationHistory)
		users.GET("/:name/dislikes", handlers.HandleListDislikes)
		users.POST("/:name/dislikes", handlers.HandleAddDislike)
	}
}
