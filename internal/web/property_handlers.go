package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/models"
	"github.com/evcraddock/realty/internal/property"
	"github.com/evcraddock/realty/internal/storage"
)

// uploadField is the multipart field carrying listing images.
const uploadField = "images"

type propertyStatusInput struct {
	Status *models.PropertyStatus `json:"status" binding:"required"`
}

func (s *Server) handleSearchProperties(c *gin.Context) {
	f, ok := propertyFilter(c)
	if !ok {
		return
	}
	res, err := s.properties.Search(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleMyProperties(c *gin.Context) {
	f, ok := propertyFilter(c)
	if !ok {
		return
	}
	res, err := s.properties.Mine(c.Request.Context(), caller(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleFeaturedProperties(c *gin.Context) {
	count := 0
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid count")
			return
		}
		count = n
	}
	props, err := s.properties.Featured(c.Request.Context(), count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

func (s *Server) handlePropertyStatistics(c *gin.Context) {
	stats, err := s.properties.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleGetProperty(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var viewer *auth.Identity
	if ident, ok := auth.Current(c); ok {
		viewer = &ident
	}
	p, err := s.properties.View(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateProperty(c *gin.Context) {
	var in property.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := s.properties.Create(c.Request.Context(), caller(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/properties/%d", p.ID))
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdateProperty(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in property.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	updated, err := s.properties.Update(c.Request.Context(), caller(c), id, in)
	respondDone(c, updated, err)
}

func (s *Server) handleUpdatePropertyStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in propertyStatusInput
	if !bindJSON(c, &in) {
		return
	}
	updated, err := s.properties.UpdateStatus(c.Request.Context(), caller(c), id, *in.Status)
	respondDone(c, updated, err)
}

func (s *Server) handleDeleteProperty(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted, err := s.properties.Delete(c.Request.Context(), caller(c), id)
	respondDone(c, deleted, err)
}

func (s *Server) handleUploadImages(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		apiError(c, http.StatusBadRequest, "expected multipart form with "+uploadField+" files")
		return
	}
	files := form.File[uploadField]
	if len(files) == 0 {
		apiError(c, http.StatusBadRequest, "no files in field "+uploadField)
		return
	}

	uploads := make([]property.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		uploads = append(uploads, property.Upload{Filename: fh.Filename, Data: data})
	}

	imgs, err := s.properties.UploadImages(c.Request.Context(), caller(c), id, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, imgs)
}

// readUpload reads at most one byte past the size limit so the store can
// reject oversized files without buffering them whole.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return data, nil
}

func (s *Server) handleSetPrimaryImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := idParam(c, "imageId")
	if !ok {
		return
	}
	updated, err := s.properties.SetPrimaryImage(c.Request.Context(), caller(c), id, imageID)
	respondDone(c, updated, err)
}

func (s *Server) handleDeleteImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := idParam(c, "imageId")
	if !ok {
		return
	}
	deleted, err := s.properties.DeleteImage(c.Request.Context(), caller(c), id, imageID)
	respondDone(c, deleted, err)
}
