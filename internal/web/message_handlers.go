package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evcraddock/realty/internal/message"
)

func (s *Server) handleInbox(c *gin.Context) {
	q := &query{c: c}
	p := q.page()
	if !q.done() {
		return
	}
	res, err := s.messages.Inbox(c.Request.Context(), caller(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSent(c *gin.Context) {
	q := &query{c: c}
	p := q.page()
	if !q.done() {
		return
	}
	res, err := s.messages.Sent(c.Request.Context(), caller(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleUnreadCount(c *gin.Context) {
	n, err := s.messages.UnreadCount(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) handleGetMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := s.messages.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var in message.SendInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := s.messages.Send(c.Request.Context(), caller(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) handleMarkMessageRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	marked, err := s.messages.MarkAsRead(c.Request.Context(), caller(c), id)
	respondDone(c, marked, err)
}

func (s *Server) handleDeleteMessage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := s.messages.Delete(c.Request.Context(), caller(c), id)
	respondDone(c, deleted, err)
}
