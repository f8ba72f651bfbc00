package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	playground "github.com/go-playground/validator/v10"

	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/errors"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/logger"
	"github.com/b2bagadi/Maw3idokom2-sub000/pkg/validator"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination describes one page. Total counts every match, not just this
// page.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}

func NewErrorResponse(code errors.ErrorCode, message string) Response {
	return Response{Status: StatusError, Code: code.String(), Message: message}
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}

// RespondWithError maps err onto the error envelope. Errors that are not an
// AppError are logged and reported as INTERNAL without their message.
func RespondWithError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, NewErrorResponse(appErr.Code, appErr.Message))
}

// RespondWithBindError reports a gin binding failure as VALIDATION_ERROR.
func RespondWithBindError(c *gin.Context, err error) {
	msg := "invalid request body"
	var verrs playground.ValidationErrors
	if stderrors.As(err, &verrs) {
		msg = validator.Describe(verrs)
	}
	RespondWithError(c, errors.NewValidation(msg, err))
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, items interface{}, limit, offset, total int) {
	c.JSON(http.StatusOK, NewSuccessResponse(PaginatedResponse{
		Items: items,
		Pagination: Pagination{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	}))
}
