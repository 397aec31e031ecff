package bookcopy

import (
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

var (
	// ErrCopyNotFound 副本不存在
	ErrCopyNotFound = apperrors.New(apperrors.ErrCodeCopyNotFound, "副本不存在")

	// ErrDuplicateCopyNumber 副本编号重复
	ErrDuplicateCopyNumber = apperrors.NewReason(apperrors.ErrCodeDuplicateEntry, "DUPLICATE_COPY_NUMBER", "该图书已存在相同编号的副本")

	// ErrCopyInUse 副本仍被借阅或预约记录引用
	ErrCopyInUse = apperrors.NewReason(apperrors.ErrCodeCopyInUse, apperrors.ReasonCopyInUse, "副本存在借阅或预约记录,无法删除")

	// ErrInvalidCondition 品相取值非法
	ErrInvalidCondition = apperrors.New(apperrors.ErrCodeInvalidParams, "品相必须是NEW/GOOD/WORN/DAMAGED之一")

	// ErrInvalidCopyNumber 副本编号非法
	ErrInvalidCopyNumber = apperrors.New(apperrors.ErrCodeInvalidParams, "副本编号必须大于0")

	// ErrVersionConflict 乐观锁冲突(副本已被并发修改)
	ErrVersionConflict = apperrors.ErrConcurrentUpdate
)
