package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/realty/internal/account"
	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/message"
	"github.com/evcraddock/realty/internal/property"
)

var validationOnce sync.Once

// registerValidation makes validator report JSON field names.
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// apiError writes a JSON error response.
func apiError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// notFound writes a 404 with an empty body.
func notFound(c *gin.Context) {
	c.AbortWithStatus(http.StatusNotFound)
}

// bindJSON decodes and validates the request body into dst, writing a 400
// and returning false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": fields})
		return false
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		apiError(c, http.StatusBadRequest, "request body is empty")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		apiError(c, http.StatusBadRequest, "invalid JSON: "+err.Error())
	default:
		apiError(c, http.StatusBadRequest, err.Error())
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

// respondError maps a service error onto an HTTP response.
func respondError(c *gin.Context, err error) {
	var verr *account.ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr.Errors))
		for _, fe := range verr.Errors {
			if prev, ok := fields[fe.Field]; ok {
				fields[fe.Field] = prev + " " + fe.Message
				continue
			}
			fields[fe.Field] = fe.Message
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "errors": fields})
		return
	}

	switch {
	case errors.Is(err, property.ErrNotFound),
		errors.Is(err, inquiry.ErrNotFound),
		errors.Is(err, message.ErrNotFound),
		errors.Is(err, account.ErrNotFound):
		notFound(c)

	case errors.Is(err, property.ErrForbidden),
		errors.Is(err, inquiry.ErrForbidden),
		errors.Is(err, message.ErrForbidden):
		apiError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, account.ErrHasDependents),
		errors.Is(err, account.ErrDuplicateEmail),
		errors.Is(err, inquiry.ErrOwnProperty),
		errors.Is(err, inquiry.ErrPropertyNotFound),
		errors.Is(err, inquiry.ErrInvalidStatus),
		errors.Is(err, message.ErrInvalidRecipient),
		errors.Is(err, message.ErrInvalidProperty),
		errors.Is(err, property.ErrInvalidStatus),
		errors.Is(err, property.ErrInvalidInput):
		apiError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrInactive):
		apiError(c, http.StatusUnauthorized, err.Error())

	default:
		// The request logger reports errors attached to the context.
		_ = c.Error(err)
		apiError(c, http.StatusInternalServerError, "internal server error")
	}
}

// respondDone writes 204 when ok and 404 otherwise.
func respondDone(c *gin.Context, ok bool, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		notFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}
