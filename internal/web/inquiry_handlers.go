package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/models"
)

type inquiryStatusInput struct {
	Status     *models.InquiryStatus `json:"status" binding:"required"`
	AdminNotes *string               `json:"adminNotes" binding:"omitempty,max=1000"`
}

func (s *Server) handleListInquiries(c *gin.Context) {
	f, ok := inquiryFilter(c)
	if !ok {
		return
	}
	res, err := s.inquiries.List(c.Request.Context(), caller(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleMyInquiries(c *gin.Context) {
	f, ok := inquiryFilter(c)
	if !ok {
		return
	}
	res, err := s.inquiries.Mine(c.Request.Context(), caller(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handlePendingInquiryCount(c *gin.Context) {
	n, err := s.inquiries.PendingCount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) handleGetInquiry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	inq, err := s.inquiries.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inq)
}

func (s *Server) handleCreateInquiry(c *gin.Context) {
	var in inquiry.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	inq, err := s.inquiries.Create(c.Request.Context(), caller(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inq)
}

func (s *Server) handleUpdateInquiryStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in inquiryStatusInput
	if !bindJSON(c, &in) {
		return
	}
	updated, err := s.inquiries.UpdateStatus(c.Request.Context(), caller(c), id, inquiry.StatusInput{
		Status:     *in.Status,
		AdminNotes: in.AdminNotes,
	})
	respondDone(c, updated, err)
}

func (s *Server) handleDeleteInquiry(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := s.inquiries.Delete(c.Request.Context(), caller(c), id)
	respondDone(c, deleted, err)
}
