package handler

import (
	"strconv"

	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/dto/response"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/apperror"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/validation"
	"github.com/gin-gonic/gin"
)

// uintParam parses a positive numeric path parameter. On failure it writes
// a 400 response and returns false.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		response.Error(c, apperror.NewBadRequestError("Invalid "+name))
		return 0, false
	}
	return uint(v), true
}

// intParam parses a positive numeric path parameter
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		response.Error(c, apperror.NewBadRequestError("Invalid "+name))
		return 0, false
	}
	return v, true
}

// bindError reports a binding failure, listing field errors when the
// validator produced them
func bindError(c *gin.Context, err error) {
	response.Error(c, validation.ToAppError(err))
}
