// Package response implements the uniform response envelope: every mutation
// returns either {"success":true,"data":...} or {"error":...,"code":...}.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/apperrors"
	"gorm.io/gorm"
)

// Envelope is the success response shape. Used by swagger to generate documentation.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorBody is the error response shape
type ErrorBody struct {
	Error string         `json:"error"`
	Code  apperrors.Code `json:"code,omitempty"`
}

// OK sends a success envelope with status 200
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created sends a success envelope with status 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Message sends a success envelope carrying a message instead of data
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": nil, "message": msg})
}

// BadRequest sends a validation error for request binding failures
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: msg, Code: apperrors.CodeValidation})
}

// httpStatus maps application error codes to HTTP status codes
func httpStatus(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeAuthentication:
		return http.StatusUnauthorized
	case apperrors.CodePermission:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeDuplicate:
		return http.StatusConflict
	case apperrors.CodeRelation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// HandleError is the single conversion point from typed errors to the error
// envelope. ORM errors are mapped first; anything still untyped becomes an
// internal error with a generic message so no details leak to the caller.
func HandleError(c *gin.Context, err error) {
	err = apperrors.FromORM(err)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(httpStatus(appErr.Code), ErrorBody{Error: appErr.Message, Code: appErr.Code})
		return
	}

	// Late-mapped gorm errors that escaped a handler's own FromORM call
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, ErrorBody{Error: "Record not found", Code: apperrors.CodeNotFound})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{Error: "Internal server error", Code: apperrors.CodeInternal})
}
