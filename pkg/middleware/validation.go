package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/richxcame/seatshare/pkg/common"
	"github.com/richxcame/seatshare/pkg/validation"
)

// ValidateJSON binds the JSON body into req and validates it
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// ValidateQuery binds query parameters into req and validates it
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return err
	}
	return validation.ValidateStruct(req)
}

// ValidationErrorBody is the error payload for rejected input
type ValidationErrorBody struct {
	Success bool              `json:"success"`
	Error   common.ErrorInfo  `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondWithValidationError sends a standardized validation error response
func RespondWithValidationError(c *gin.Context, err error) {
	body := ValidationErrorBody{
		Error: common.ErrorInfo{Code: http.StatusBadRequest, Message: "validation failed"},
	}

	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		body.Fields = valErr.Errors
	} else {
		body.Error.Message = "invalid request: " + err.Error()
	}

	c.JSON(http.StatusBadRequest, body)
}

// ValidateAndBind validates and binds the JSON body; on failure the response is already written
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// ValidateAndBindQuery validates and binds query parameters
func ValidateAndBindQuery(c *gin.Context, req interface{}) bool {
	if err := ValidateQuery(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// ValidateAndBindForm validates and binds a multipart form
func ValidateAndBindForm(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindWith(req, binding.FormMultipart)
	if err == nil {
		err = validation.ValidateStruct(req)
	}
	if err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// MaxBodySize limits the request body size. Oversized bodies surface as bind errors.
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
