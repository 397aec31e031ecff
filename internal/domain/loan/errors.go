package loan

import (
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.New(apperrors.ErrCodeLoanNotFound, "借阅记录不存在")

	// ErrInvalidDueDate 归还期限必须晚于当前时间
	ErrInvalidDueDate = apperrors.ErrInvalidDueDate

	// ErrAlreadyReturned 图书已归还
	ErrAlreadyReturned = apperrors.NewReason(apperrors.ErrCodeAlreadyReturned, apperrors.ReasonAlreadyReturned, "该借阅已归还")

	// ErrNotBorrower 只有借阅人本人可以操作
	ErrNotBorrower = apperrors.NewReason(apperrors.ErrCodeForbidden, apperrors.ReasonForbidden, "只能操作自己的借阅")

	// ErrCopyAlreadyLoaned 副本已有ACTIVE借阅(唯一索引冲突)
	ErrCopyAlreadyLoaned = apperrors.ErrConcurrentUpdate

	// ErrLoanLimitReached 超过同时借阅上限
	ErrLoanLimitReached = apperrors.NewReason(apperrors.ErrCodeLoanLimitReached, apperrors.ReasonLoanLimitReached, "已达到最大借阅数量")

	// ErrRenewalLimitReached 超过续借次数上限
	ErrRenewalLimitReached = apperrors.NewReason(apperrors.ErrCodeRenewalLimitReached, apperrors.ReasonRenewalLimitReached, "已达到最大续借次数")

	// ErrRenewalBlocked 有读者在等待该副本
	ErrRenewalBlocked = apperrors.NewReason(apperrors.ErrCodeRenewalBlocked, apperrors.ReasonRenewalBlocked, "该副本已被预约,无法续借")
)
