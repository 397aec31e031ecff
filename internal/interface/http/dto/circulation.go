package dto

import (
	"time"

	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
)

// TimeFormat 响应中的时间格式(UTC)
const TimeFormat = "2006-01-02 15:04:05"

// =========================================
// 书篮
// =========================================

// AddToCartRequest 加入书篮
type AddToCartRequest struct {
	BookID uint `json:"book_id" binding:"required,min=1" example:"1"`
}

// CartItemResponse 书篮条目
type CartItemResponse struct {
	BookID  uint   `json:"book_id" example:"1"`
	Title   string `json:"title" example:"Dom Casmurro"`
	Author  string `json:"author" example:"Machado de Assis"`
	AddedAt string `json:"added_at" example:"2024-03-01 10:00:00"`
}

// ClearCartResponse 清空书篮
type ClearCartResponse struct {
	Removed int64 `json:"removed" example:"3"`
}

// =========================================
// 借阅
// =========================================

// CheckoutRequest 书篮结算
// due_date使用RFC3339格式,必须晚于当前时间
type CheckoutRequest struct {
	DueDate time.Time `json:"due_date" binding:"required" example:"2024-03-15T00:00:00Z"`
}

// AllocateRequest 直接借一本书(不经过书篮)
type AllocateRequest struct {
	BookID  uint      `json:"book_id" binding:"required,min=1" example:"1"`
	DueDate time.Time `json:"due_date" binding:"required" example:"2024-03-15T00:00:00Z"`
}

// LoanResponse 借阅记录
type LoanResponse struct {
	ID         uint   `json:"id" example:"1"`
	BookID     uint   `json:"book_id" example:"1"`
	BookTitle  string `json:"book_title" example:"Dom Casmurro"`
	BookCopyID uint   `json:"book_copy_id" example:"3"`
	CopyNumber int    `json:"copy_number" example:"1"`
	Status     string `json:"status" example:"ACTIVE"`
	BorrowedAt string `json:"borrowed_at" example:"2024-03-01 10:00:00"`
	DueAt      string `json:"due_at" example:"2024-03-15 00:00:00"`
	ReturnedAt string `json:"returned_at,omitempty" example:""`
	Renewals   int    `json:"renewals" example:"0"`
	Overdue    bool   `json:"overdue" example:"false"`
}

// CopySnapshotResponse 副本状态快照
type CopySnapshotResponse struct {
	CopyID     uint   `json:"copy_id" example:"3"`
	CopyNumber int    `json:"copy_number" example:"1"`
	Status     string `json:"status" example:"LOANED"`
}

// CheckoutFailureResponse 结算失败条目
type CheckoutFailureResponse struct {
	BookID  uint                   `json:"book_id" example:"2"`
	Title   string                 `json:"title" example:"Iracema"`
	Reason  string                 `json:"reason" example:"NO_COPY"`
	Message string                 `json:"message" example:"没有可借的副本"`
	Copies  []CopySnapshotResponse `json:"copies,omitempty"`
}

// CheckoutResponse 结算结果
// status=COMPLETE表示全部借到,PARTIAL表示至少一本失败
type CheckoutResponse struct {
	Status     string                    `json:"status" example:"PARTIAL"`
	TotalItems int                       `json:"total_items" example:"2"`
	Loans      []LoanResponse            `json:"loans"`
	Failures   []CheckoutFailureResponse `json:"failures"`
}

// ReturnResponse 归还回执
type ReturnResponse struct {
	Loan          LoanResponse `json:"loan"`
	CopyStatus    string       `json:"copy_status" example:"AVAILABLE"`
	DurationDays  int          `json:"duration_days" example:"3"`
	ReservationID uint         `json:"reservation_id,omitempty" example:"0"`
}

// =========================================
// 预约
// =========================================

// ReserveRequest 预约
type ReserveRequest struct {
	BookID  uint      `json:"book_id" binding:"required,min=1" example:"1"`
	DueDate time.Time `json:"due_date" binding:"required" example:"2024-03-20T00:00:00Z"`
}

// ReservationResponse 预约记录
type ReservationResponse struct {
	ID         uint   `json:"id" example:"1"`
	BookID     uint   `json:"book_id" example:"1"`
	BookTitle  string `json:"book_title" example:"Dom Casmurro"`
	BookAuthor string `json:"book_author" example:"Machado de Assis"`
	BookCopyID uint   `json:"book_copy_id" example:"3"`
	CopyNumber int    `json:"copy_number" example:"1"`
	Status     string `json:"status" example:"ACTIVE"`
	ReservedAt string `json:"reserved_at" example:"2024-03-01 10:00:00"`
	DueAt      string `json:"due_at" example:"2024-03-20 00:00:00"`
}

// =========================================
// 转换函数
// =========================================

// FormatTime 格式化时间,零值返回空串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// ToCartItemResponse 书篮条目转换
func ToCartItemResponse(item *cart.Item) CartItemResponse {
	return CartItemResponse{
		BookID:  item.BookID,
		Title:   item.BookTitle,
		Author:  item.BookAuthor,
		AddedAt: FormatTime(item.CreatedAt),
	}
}

// ToCartItemResponses 批量转换
func ToCartItemResponses(items []*cart.Item) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToCartItemResponse(item))
	}
	return out
}

// ToLoanResponse 借阅记录转换
func ToLoanResponse(l *loan.Loan, overdue bool) LoanResponse {
	resp := LoanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		BookTitle:  l.BookTitle,
		BookCopyID: l.BookCopyID,
		CopyNumber: l.CopyNumber,
		Status:     string(l.Status),
		BorrowedAt: FormatTime(l.BorrowedAt),
		DueAt:      FormatTime(l.DueAt),
		Renewals:   l.Renewals,
		Overdue:    overdue,
	}
	if l.ReturnedAt != nil {
		resp.ReturnedAt = FormatTime(*l.ReturnedAt)
	}
	return resp
}

// ToLoanViewResponses "我的借阅"列表转换
func ToLoanViewResponses(views []appcirculation.LoanView) []LoanResponse {
	out := make([]LoanResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ToLoanResponse(v.Loan, v.Overdue))
	}
	return out
}

// ToCopySnapshots 副本快照转换
func ToCopySnapshots(snaps []bookcopy.Snapshot) []CopySnapshotResponse {
	if len(snaps) == 0 {
		return nil
	}
	out := make([]CopySnapshotResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, CopySnapshotResponse{
			CopyID:     s.CopyID,
			CopyNumber: s.CopyNumber,
			Status:     string(s.Status),
		})
	}
	return out
}

// ToCheckoutResponse 结算结果转换
func ToCheckoutResponse(result *appcirculation.CheckoutResult) CheckoutResponse {
	resp := CheckoutResponse{
		Status:     string(result.Status),
		TotalItems: result.TotalItems,
		Loans:      make([]LoanResponse, 0, len(result.Loans)),
		Failures:   make([]CheckoutFailureResponse, 0, len(result.Failures)),
	}
	for _, l := range result.Loans {
		resp.Loans = append(resp.Loans, ToLoanResponse(l, false))
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, CheckoutFailureResponse{
			BookID:  f.BookID,
			Title:   f.Title,
			Reason:  f.Reason,
			Message: f.Message,
			Copies:  ToCopySnapshots(f.Copies),
		})
	}
	return resp
}

// ToReturnResponse 归还回执转换
func ToReturnResponse(receipt *appcirculation.LoanReceipt) ReturnResponse {
	return ReturnResponse{
		Loan:          ToLoanResponse(receipt.Loan, false),
		CopyStatus:    string(receipt.CopyStatus),
		DurationDays:  receipt.DurationDays,
		ReservationID: receipt.ReservationID,
	}
}

// ToReservationResponse 预约记录转换
func ToReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		BookID:     r.BookID,
		BookTitle:  r.BookTitle,
		BookAuthor: r.BookAuthor,
		BookCopyID: r.BookCopyID,
		CopyNumber: r.CopyNumber,
		Status:     string(r.Status),
		ReservedAt: FormatTime(r.ReservedAt),
		DueAt:      FormatTime(r.DueAt),
	}
}

// ToReservationResponses 批量转换
func ToReservationResponses(rs []*reservation.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToReservationResponse(r))
	}
	return out
}
