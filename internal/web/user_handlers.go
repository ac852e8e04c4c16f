package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/models"
)

type userActiveInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type userRoleInput struct {
	Role models.Role `json:"role" binding:"required"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	f, ok := userFilter(c)
	if !ok {
		return
	}
	res, err := s.users.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleRecentUsers(c *gin.Context) {
	count := 0
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid count")
			return
		}
		count = n
	}
	users, err := s.users.Recent(c.Request.Context(), count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleUserStatistics(c *gin.Context) {
	stats, err := s.users.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGetUser(c *gin.Context) {
	u, err := s.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var in account.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := s.users.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var in account.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	updated, err := s.users.Update(c.Request.Context(), c.Param("id"), in)
	respondDone(c, updated, err)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	deleted, err := s.users.Delete(c.Request.Context(), c.Param("id"))
	respondDone(c, deleted, err)
}

func (s *Server) handleSetUserActive(c *gin.Context) {
	var in userActiveInput
	if !bindJSON(c, &in) {
		return
	}
	updated, err := s.users.SetActive(c.Request.Context(), c.Param("id"), *in.IsActive)
	respondDone(c, updated, err)
}

func (s *Server) handleSetUserRole(c *gin.Context) {
	var in userRoleInput
	if !bindJSON(c, &in) {
		return
	}
	role := in.Role
	if r, err := models.ParseRole(string(in.Role)); err == nil {
		role = r
	}
	updated, err := s.users.SetRole(c.Request.Context(), c.Param("id"), role)
	respondDone(c, updated, err)
}
