package handler

import (
	"github.com/gin-gonic/gin"

	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/dto"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	allocateUseCase *appcirculation.AllocateUseCase
	returnUseCase   *appcirculation.ReturnLoanUseCase
	renewUseCase    *appcirculation.RenewLoanUseCase
	queryUseCase    *appcirculation.QueryUseCase
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	allocateUseCase *appcirculation.AllocateUseCase,
	returnUseCase *appcirculation.ReturnLoanUseCase,
	renewUseCase *appcirculation.RenewLoanUseCase,
	queryUseCase *appcirculation.QueryUseCase,
) *LoanHandler {
	return &LoanHandler{
		allocateUseCase: allocateUseCase,
		returnUseCase:   returnUseCase,
		renewUseCase:    renewUseCase,
		queryUseCase:    queryUseCase,
	}
}

// Allocate 借一本书
// @Summary      借书
// @Description  为指定图书分配一个可借副本(优先分配为当前读者保留的副本)
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AllocateRequest true "图书与归还期限"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      200 {object} response.Response "NO_COPY / LOAN_LIMIT_REACHED / INVALID_DUE_DATE / NOT_FOUND"
// @Router       /api/v1/loans [post]
func (h *LoanHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	l, err := h.allocateUseCase.Execute(c.Request.Context(), middleware.GetPermission(c), req.BookID, req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToLoanResponse(l, false))
}

// Return 归还
// @Summary      归还
// @Description  有人预约时副本转为RESERVED并通知预约者,否则回到AVAILABLE
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.ReturnResponse}
// @Failure      200 {object} response.Response "NOT_FOUND / FORBIDDEN / ALREADY_RETURNED"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	loanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	receipt, err := h.returnUseCase.Execute(c.Request.Context(), middleware.GetPermission(c), loanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReturnResponse(receipt))
}

// Renew 续借
// @Summary      续借
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      200 {object} response.Response "RENEWAL_LIMIT_REACHED / RENEWAL_BLOCKED / ALREADY_RETURNED"
// @Router       /api/v1/loans/{id}/renew [post]
func (h *LoanHandler) Renew(c *gin.Context) {
	loanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	l, err := h.renewUseCase.Execute(c.Request.Context(), middleware.GetPermission(c), loanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToLoanResponse(l, false))
}

// Mine 我的借阅
// @Summary      我的借阅
// @Description  包含已归还的记录,overdue按当前时间计算
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.LoanResponse}
// @Router       /api/v1/loans/mine [get]
func (h *LoanHandler) Mine(c *gin.Context) {
	views, err := h.queryUseCase.MyLoans(c.Request.Context(), middleware.GetPermission(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToLoanViewResponses(views))
}
