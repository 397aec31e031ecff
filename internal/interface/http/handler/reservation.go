package handler

import (
	"github.com/gin-gonic/gin"

	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/dto"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// ReservationHandler 预约HTTP处理器
type ReservationHandler struct {
	reserveUseCase *appcirculation.ReserveUseCase
	queryUseCase   *appcirculation.QueryUseCase
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	reserveUseCase *appcirculation.ReserveUseCase,
	queryUseCase *appcirculation.QueryUseCase,
) *ReservationHandler {
	return &ReservationHandler{
		reserveUseCase: reserveUseCase,
		queryUseCase:   queryUseCase,
	}
}

// Reserve 预约
// @Summary      预约
// @Description  只有当该书没有可借副本时才能预约,预约绑定到一个已借出的副本
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReserveRequest true "图书与预约期限"
// @Success      200 {object} response.Response{data=dto.ReservationResponse}
// @Failure      200 {object} response.Response "COPIES_AVAILABLE / DUPLICATE_RESERVATION / NO_COPY_TO_RESERVE"
// @Router       /api/v1/reservations [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	r, err := h.reserveUseCase.Execute(c.Request.Context(), middleware.GetPermission(c), req.BookID, req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReservationResponse(r))
}

// Mine 我的预约
// @Summary      我的预约
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.ReservationResponse}
// @Router       /api/v1/reservations/mine [get]
func (h *ReservationHandler) Mine(c *gin.Context) {
	rs, err := h.queryUseCase.MyReservations(c.Request.Context(), middleware.GetPermission(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToReservationResponses(rs))
}
