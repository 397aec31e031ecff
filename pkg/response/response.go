// Package response 统一的HTTP应答信封
//
// HTTP状态码始终是200,成败看Code:0成功,其余取自pkg/errors的错误码。
// 客户端按Reason(如NO_COPY、RENEWAL_BLOCKED)分支,Message只用于展示。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

type Response struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	write(c, Response{Message: "success", Data: data})
}

// Error 把任意error转换成信封
// 存储类错误和带底层原因的错误会记日志,底层原因不会返回给客户端
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil || appErr.Kind() == apperrors.KindStorage {
		log.Error().Err(appErr.Err).
			Int("code", appErr.Code).
			Str("reason", appErr.Reason).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("trace_id", tracing.ExtractTraceID(c.Request.Context())).
			Msg(appErr.Message)
	}

	write(c, Response{
		Code:    appErr.Code,
		Reason:  appErr.Reason,
		Message: appErr.Message,
	})
}

// Fail 直接给出错误码,用于中间件这类没有AppError的场景
func Fail(c *gin.Context, code int, reason, message string) {
	write(c, Response{Code: code, Reason: reason, Message: message})
}

func write(c *gin.Context, resp Response) {
	resp.TraceID = tracing.ExtractTraceID(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}

// Page 分页列表
type Page struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func NewPage(list interface{}, total int64, page, pageSize int) *Page {
	p := &Page{List: list, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}

func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPage(list, total, page, pageSize))
}
