package httpserver

import (
	"net/http"

	httptransport "cardvault/contexts/account-management/account-service/transport/http"

	"github.com/gin-gonic/gin"
)

// handleCreateUser godoc
// @Summary Create user
// @Description Registers an active user. Admin only.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body httptransport.UserRequest true "User"
// @Success 201 {object} httptransport.UserResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /users [post]
func (s *Server) handleCreateUser(c *gin.Context) {
	var req httptransport.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	resp, err := s.accounts.Handler.CreateUserHandler(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, resp)
}

// handleListUsers godoc
// @Summary List users
// @Description Pages through users filtered by name and surname fragments. Admin only.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name fragment (2..50)"
// @Param surname query string false "Surname fragment (2..50)"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} httptransport.UserPageResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /users [get]
func (s *Server) handleListUsers(c *gin.Context) {
	var req httptransport.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	resp, err := s.accounts.Handler.ListUsersHandler(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleGetUserByEmail godoc
// @Summary Get user by email
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email query string true "Email"
// @Success 200 {object} httptransport.UserResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /users/by-email [get]
func (s *Server) handleGetUserByEmail(c *gin.Context) {
	resp, err := s.accounts.Handler.GetUserByEmailHandler(c.Request.Context(), identityFrom(c), c.Query("email"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleGetUser godoc
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {object} httptransport.UserResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) handleGetUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.GetUserHandler(c.Request.Context(), identityFrom(c), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleUpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param request body httptransport.UserRequest true "User"
// @Success 200 {object} httptransport.UserResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) handleUpdateUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httptransport.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	resp, err := s.accounts.Handler.UpdateUserHandler(c.Request.Context(), identityFrom(c), userID, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleSetUserActive serves PUT /users/{id}/activate and /users/{id}/deactivate.
func (s *Server) handleSetUserActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id")
		if !ok {
			return
		}
		resp, err := s.accounts.Handler.SetUserActiveHandler(c.Request.Context(), identityFrom(c), userID, active)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, resp)
	}
}

// handleDeleteUser godoc
// @Summary Delete user and their cards
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {object} httptransport.DeleteUserResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) handleDeleteUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.DeleteUserHandler(c.Request.Context(), identityFrom(c), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleCreateCard godoc
// @Summary Create card for user
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Owner id"
// @Param request body httptransport.CardRequest true "Card"
// @Success 201 {object} httptransport.CardResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /cards/user/{userId} [post]
func (s *Server) handleCreateCard(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req httptransport.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	resp, err := s.accounts.Handler.CreateCardHandler(c.Request.Context(), identityFrom(c), userID, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, resp)
}

// handleListCards godoc
// @Summary List all cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} httptransport.CardPageResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /cards [get]
func (s *Server) handleListCards(c *gin.Context) {
	var req httptransport.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	resp, err := s.accounts.Handler.ListCardsHandler(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleListUserCards godoc
// @Summary List cards of user
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Owner id"
// @Success 200 {object} httptransport.CardListResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /cards/users/{userId} [get]
func (s *Server) handleListUserCards(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.ListUserCardsHandler(c.Request.Context(), identityFrom(c), userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleGetCard godoc
// @Summary Get card
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card id"
// @Success 200 {object} httptransport.CardResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /cards/{id} [get]
func (s *Server) handleGetCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.GetCardHandler(c.Request.Context(), identityFrom(c), cardID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleUpdateCard godoc
// @Summary Update card
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Card id"
// @Param request body httptransport.CardRequest true "Card"
// @Success 200 {object} httptransport.CardResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /cards/{id} [put]
func (s *Server) handleUpdateCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req httptransport.CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindingError(c, err)
		return
	}
	resp, err := s.accounts.Handler.UpdateCardHandler(c.Request.Context(), identityFrom(c), cardID, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleSetCardActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cardID, ok := pathID(c, "id")
		if !ok {
			return
		}
		resp, err := s.accounts.Handler.SetCardActiveHandler(c.Request.Context(), identityFrom(c), cardID, active)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, resp)
	}
}

// handleDeleteCard godoc
// @Summary Delete card
// @Tags cards
// @Security BearerAuth
// @Param id path int true "Card id"
// @Success 204
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /cards/{id} [delete]
func (s *Server) handleDeleteCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.accounts.Handler.DeleteCardHandler(c.Request.Context(), identityFrom(c), cardID); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleInspectCache godoc
// @Summary Read one raw cache entry
// @Tags cache
// @Produce json
// @Security BearerAuth
// @Param space path string true "users:id, cards:id or cards:owner"
// @Param key path string true "Entry key"
// @Success 200 {object} httptransport.CacheEntryResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /cache/{space}/{key} [get]
func (s *Server) handleInspectCache(c *gin.Context) {
	resp, err := s.accounts.Handler.InspectCacheHandler(c.Request.Context(), identityFrom(c), c.Param("space"), c.Param("key"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}

// handleClearCache godoc
// @Summary Clear cache spaces
// @Tags cache
// @Produce json
// @Security BearerAuth
// @Param kind path string true "users, cards or all"
// @Success 200 {object} httptransport.ClearCacheResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /cache/{kind} [delete]
func (s *Server) handleClearCache(c *gin.Context) {
	resp, err := s.accounts.Handler.ClearCacheHandler(c.Request.Context(), identityFrom(c), c.Param("kind"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, resp)
}
