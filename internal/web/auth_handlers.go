package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/models"
)

// tokenResponse is returned by register and login.
type tokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      account.DTO `json:"user"`
}

// caller returns the identity set by Authenticate. Routes using it sit
// behind RequireAuth or RequireRole.
func caller(c *gin.Context) auth.Identity {
	id, _ := auth.Current(c)
	return id
}

func (s *Server) issue(c *gin.Context, code int, u *account.DTO) {
	token, expires, err := s.tokens.Issue(u.ID, []models.Role{u.Role})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(code, tokenResponse{Token: token, ExpiresAt: expires, User: *u})
}

func (s *Server) handleRegister(c *gin.Context) {
	var in account.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := s.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	s.issue(c, http.StatusCreated, u)
}

func (s *Server) handleLogin(c *gin.Context) {
	var in account.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := s.users.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	s.issue(c, http.StatusOK, u)
}

func (s *Server) handleMe(c *gin.Context) {
	u, err := s.users.Get(c.Request.Context(), caller(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
