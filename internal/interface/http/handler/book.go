package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/catalog"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/dto"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// BookHandler 馆藏HTTP处理器
// 查询接口公开,登记/修改接口只允许馆员(用例内校验角色)
type BookHandler struct {
	registerBookUseCase *catalog.RegisterBookUseCase
	listBooksUseCase    *catalog.ListBooksUseCase
	copyUseCase         *catalog.CopyUseCase
}

// NewBookHandler 创建馆藏处理器
func NewBookHandler(
	registerBookUseCase *catalog.RegisterBookUseCase,
	listBooksUseCase *catalog.ListBooksUseCase,
	copyUseCase *catalog.CopyUseCase,
) *BookHandler {
	return &BookHandler{
		registerBookUseCase: registerBookUseCase,
		listBooksUseCase:    listBooksUseCase,
		copyUseCase:         copyUseCase,
	}
}

// RegisterBook 登记图书
// @Summary      登记图书
// @Description  馆员登记新书,同时创建编号1..N的副本(同一事务)
// @Tags         馆藏
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.RegisterBookResponse}
// @Failure      200 {object} response.Response "FORBIDDEN / ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) RegisterBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.RegisterBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerBookUseCase.Execute(c.Request.Context(), middleware.GetPermission(c), catalog.RegisterBookRequest{
		ISBN:   req.ISBN,
		Title:  req.Title,
		Author: req.Author,
		Copies: req.Copies,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 构建HTTP响应
	response.Success(c, dto.RegisterBookResponse{
		Book:   dto.ToBookResponse(result.Book),
		Copies: dto.ToCopyResponses(result.Copies),
	})
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询,keyword匹配书名、作者、ISBN;available为当前可借副本数
// @Tags         馆藏
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "关键词"
// @Success      200 {object} response.Response{data=response.Page{list=[]dto.BookListItem}}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), catalog.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.ToBookListItems(result.List), result.Total, result.Page, result.PageSize)
}

// ListCopies 副本列表
// @Summary      副本列表
// @Tags         馆藏
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]dto.CopyResponse}
// @Failure      200 {object} response.Response "NOT_FOUND"
// @Router       /api/v1/books/{id}/copies [get]
func (h *BookHandler) ListCopies(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	copies, err := h.copyUseCase.List(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCopyResponses(copies))
}

// AddCopy 新增副本
// @Summary      新增副本
// @Tags         馆藏
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AddCopyRequest true "副本信息"
// @Success      200 {object} response.Response{data=dto.CopyResponse}
// @Failure      200 {object} response.Response "FORBIDDEN / NOT_FOUND / 副本编号重复"
// @Router       /api/v1/books/{id}/copies [post]
func (h *BookHandler) AddCopy(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	bc, err := h.copyUseCase.Add(c.Request.Context(), middleware.GetPermission(c), catalog.AddCopyRequest{
		BookID:     bookID,
		CopyNumber: req.CopyNumber,
		Condition:  req.Condition,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCopyResponse(bc))
}

// UpdateCondition 修改副本品相
// @Summary      修改副本品相
// @Tags         馆藏
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "副本ID"
// @Param        request body dto.UpdateConditionRequest true "品相"
// @Success      200 {object} response.Response{data=dto.CopyResponse}
// @Router       /api/v1/copies/{id} [patch]
func (h *BookHandler) UpdateCondition(c *gin.Context) {
	copyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	bc, err := h.copyUseCase.UpdateCondition(c.Request.Context(), middleware.GetPermission(c), copyID, req.Condition)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToCopyResponse(bc))
}

// RemoveCopy 删除副本
// @Summary      删除副本
// @Description  被借阅或预约记录引用的副本不能删除(COPY_IN_USE)
// @Tags         馆藏
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "副本ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "FORBIDDEN / NOT_FOUND / COPY_IN_USE"
// @Router       /api/v1/copies/{id} [delete]
func (h *BookHandler) RemoveCopy(c *gin.Context) {
	copyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.copyUseCase.Remove(c.Request.Context(), middleware.GetPermission(c), copyID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
