package handler

import (
	"github.com/gin-gonic/gin"

	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/dto"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// CartHandler 书篮HTTP处理器(含结算)
type CartHandler struct {
	cartUseCase     *appcirculation.CartUseCase
	checkoutUseCase *appcirculation.CheckoutUseCase
}

// NewCartHandler 创建书篮处理器
func NewCartHandler(
	cartUseCase *appcirculation.CartUseCase,
	checkoutUseCase *appcirculation.CheckoutUseCase,
) *CartHandler {
	return &CartHandler{
		cartUseCase:     cartUseCase,
		checkoutUseCase: checkoutUseCase,
	}
}

// List 查看书篮
// @Summary      查看书篮
// @Tags         书篮
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.CartItemResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/cart [get]
func (h *CartHandler) List(c *gin.Context) {
	items, err := h.cartUseCase.List(c.Request.Context(), middleware.GetPermission(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartItemResponses(items))
}

// Add 加入书篮
// @Summary      加入书篮
// @Description  同一本书只能加入一次;加入时不检查是否有可借副本
// @Tags         书篮
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddToCartRequest true "图书"
// @Success      200 {object} response.Response{data=dto.CartItemResponse}
// @Failure      200 {object} response.Response "NOT_FOUND / DUPLICATE_CART_ITEM"
// @Router       /api/v1/cart [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	item, err := h.cartUseCase.Add(c.Request.Context(), middleware.GetPermission(c), req.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCartItemResponse(item))
}

// Remove 移出书篮
// @Summary      移出书篮
// @Tags         书篮
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "NOT_FOUND"
// @Router       /api/v1/cart/{book_id} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		return
	}
	if err := h.cartUseCase.Remove(c.Request.Context(), middleware.GetPermission(c), bookID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Clear 清空书篮
// @Summary      清空书篮
// @Tags         书篮
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.ClearCartResponse}
// @Router       /api/v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	n, err := h.cartUseCase.Clear(c.Request.Context(), middleware.GetPermission(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ClearCartResponse{Removed: n})
}

// Checkout 书篮结算
// @Summary      书篮结算
// @Description  每本书独立分配一个副本;部分失败不影响其他书,结果为COMPLETE或PARTIAL。
// @Description  结算结束后书篮被清空。支持Idempotency-Key头,重试时返回第一次的结果。
// @Tags         书篮
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "幂等键"
// @Param        request body dto.CheckoutRequest true "归还期限"
// @Success      200 {object} response.Response{data=dto.CheckoutResponse}
// @Failure      200 {object} response.Response "EMPTY_CART / INVALID_DUE_DATE"
// @Router       /api/v1/cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkoutUseCase.Execute(c.Request.Context(), middleware.GetPermission(c), req.DueDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCheckoutResponse(result))
}
