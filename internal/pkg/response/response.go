// Package response provides the uniform JSON envelope used by every route.
// Errors always render as {"success": false, "error": "..."} so callers can
// branch on a single shape regardless of which layer failed.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "not found")
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	fail(c, http.StatusMethodNotAllowed, "method not allowed")
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	fail(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 error response carrying the error message. The
// error is also attached to the context so the request logger picks it up.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, err.Error())
}

// InternalErrorMsg sends a 500 error response with a fixed message.
func InternalErrorMsg(c *gin.Context, message string) {
	fail(c, http.StatusInternalServerError, message)
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}
