package errors

import (
	"errors"
	"fmt"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（不要直接暴露HTTP状态码）
// 2. Reason是稳定的机器可读原因（如NO_COPY），借阅结果中的失败条目直接使用它
// 3. Message是用户友好的提示信息
// 4. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Reason  string `json:"reason"`  // 机器可读原因
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 预定义错误是包级变量，被Wrap后仍然可以用errors.Is识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Reason == t.Reason
}

// Kind 返回错误所属的分类
func (e *AppError) Kind() Kind {
	return kindOfCode(e.Code)
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Reason:  defaultReason(code),
		Message: message,
	}
}

// NewReason 创建带机器可读原因的AppError
func NewReason(code int, reason, message string) *AppError {
	return &AppError{
		Code:    code,
		Reason:  reason,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Reason:  ReasonStorage,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Reason:  ReasonStorage,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期
	ErrCodeForbidden    = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound            = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound        = 40402 // 图书不存在
	ErrCodeCopyNotFound        = 40404 // 副本不存在
	ErrCodeLoanNotFound        = 40405 // 借阅记录不存在
	ErrCodeReservationNotFound = 40406 // 预约不存在
	ErrCodeCartItemNotFound    = 40407 // 书篮条目不存在

	// 冲突类业务错误（40000-40019）
	ErrCodeBusinessError        = 40000 // 业务错误(通用)
	ErrCodeDuplicateReservation = 40006 // 重复预约
	ErrCodeAlreadyReturned      = 40007 // 已归还
	ErrCodeCopiesAvailable      = 40008 // 仍有可借副本
	ErrCodeDuplicateEntry       = 40009 // 重复记录(通用)
	ErrCodeRenewalBlocked       = 40010 // 有预约等待,不可续借
	ErrCodeCopyInUse            = 40011 // 副本被借阅/预约引用
	ErrCodeConcurrentUpdate     = 40012 // 并发修改冲突

	// 不可用类（40020-40039）：预期内的结果,不是故障
	ErrCodeNoCopyAvailable     = 40020 // 没有可借副本
	ErrCodeNoCopyToReserve     = 40021 // 没有可预约副本
	ErrCodeLoanLimitReached    = 40022 // 超过借阅上限
	ErrCodeRenewalLimitReached = 40023 // 超过续借上限

	// 参数错误（40900-40999）
	ErrCodeInvalidParams     = 40900 // 参数错误
	ErrCodeBindError         = 40901 // 参数绑定失败
	ErrCodeInvalidDueDate    = 40902 // 归还期限非法
	ErrCodeEmptyCart         = 40903 // 书篮为空
	ErrCodeDuplicateCartItem = 40904 // 书篮重复
)

// 机器可读原因
const (
	ReasonInternal             = "INTERNAL"
	ReasonStorage              = "STORAGE"
	ReasonUnauthorized         = "UNAUTHORIZED"
	ReasonForbidden            = "FORBIDDEN"
	ReasonNotFound             = "NOT_FOUND"
	ReasonInvalidParams        = "INVALID_PARAMS"
	ReasonInvalidDueDate       = "INVALID_DUE_DATE"
	ReasonEmptyCart            = "EMPTY_CART"
	ReasonDuplicateCartItem    = "DUPLICATE_CART_ITEM"
	ReasonDuplicateReservation = "DUPLICATE_RESERVATION"
	ReasonAlreadyReturned      = "ALREADY_RETURNED"
	ReasonCopiesAvailable      = "COPIES_AVAILABLE"
	ReasonNoCopy               = "NO_COPY"
	ReasonNoCopyToReserve      = "NO_COPY_TO_RESERVE"
	ReasonLoanLimitReached     = "LOAN_LIMIT_REACHED"
	ReasonRenewalLimitReached  = "RENEWAL_LIMIT_REACHED"
	ReasonRenewalBlocked       = "RENEWAL_BLOCKED"
	ReasonCopyInUse            = "COPY_IN_USE"
	ReasonDuplicateEntry       = "DUPLICATE_ENTRY"
	ReasonConcurrentUpdate     = "CONCURRENT_UPDATE"
)

// =========================================
// 错误分类
// =========================================

// Kind 错误分类
// VALIDATION/NOT_FOUND/CONFLICT 在任何写操作之前被拒绝;
// UNAVAILABLE 是预期内的结果; STORAGE 需要记录日志
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindUnavailable  Kind = "UNAVAILABLE"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindStorage      Kind = "STORAGE"
)

func kindOfCode(code int) Kind {
	switch {
	case code >= 50000:
		return KindStorage
	case code >= 40900:
		return KindValidation
	case code >= 40400 && code < 40500:
		return KindNotFound
	case code >= 40100 && code < 40104:
		return KindUnauthorized
	case code >= 40020 && code < 40040:
		return KindUnavailable
	default:
		return KindConflict
	}
}

func defaultReason(code int) string {
	switch kindOfCode(code) {
	case KindStorage:
		return ReasonInternal
	case KindValidation:
		return ReasonInvalidParams
	case KindNotFound:
		return ReasonNotFound
	case KindUnauthorized:
		return ReasonUnauthorized
	}
	if code == ErrCodeForbidden {
		return ReasonForbidden
	}
	return ReasonDuplicateEntry
}

// KindOf 返回任意错误的分类,非AppError一律视为STORAGE
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindStorage
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token已过期")
	ErrForbidden    = NewReason(ErrCodeForbidden, ReasonForbidden, "无权限访问")

	// 参数错误
	ErrInvalidParams  = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError      = New(ErrCodeBindError, "参数格式错误")
	ErrInvalidDueDate = NewReason(ErrCodeInvalidDueDate, ReasonInvalidDueDate, "归还期限必须晚于当前时间")

	// 并发
	ErrConcurrentUpdate = NewReason(ErrCodeConcurrentUpdate, ReasonConcurrentUpdate, "数据已被并发修改,请重试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
