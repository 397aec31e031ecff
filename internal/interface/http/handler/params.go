package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// bindFailed 参数绑定/校验失败
func bindFailed(c *gin.Context, err error) {
	response.Error(c, apperrors.NewReason(apperrors.ErrCodeInvalidParams, apperrors.ReasonInvalidParams, "参数错误: "+err.Error()))
}

// pathID 解析路径中的ID参数,失败时直接写错误响应并返回false
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperrors.NewReason(apperrors.ErrCodeInvalidParams, apperrors.ReasonInvalidParams, "参数错误: 无效的"+name))
		return 0, false
	}
	return uint(id), true
}
