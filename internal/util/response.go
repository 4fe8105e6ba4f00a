package util

import (
	"net/http"

	"github.com/yudopr11/yupi/internal/ledger"

	"github.com/gin-gonic/gin"
)

// Response is the data payload of the uniform JSON envelope.
type Response map[string]interface{}

// business error codes
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Success writes the uniform success envelope.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Created writes the success envelope with a 201 status.
func Created(c *gin.Context, data Response) {
	c.JSON(http.StatusCreated, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes the uniform error envelope.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// DomainError maps ledger domain errors onto the envelope: NotFoundError to
// 404, ValidationError to 400, everything else to 500.
func DomainError(c *gin.Context, err error) {
	switch {
	case ledger.IsNotFound(err):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case ledger.IsValidation(err):
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
	default:
		Error(c, http.StatusInternalServerError, CodeServerErr, "internal error")
	}
}
