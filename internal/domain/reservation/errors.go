package reservation

import (
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

var (
	// ErrReservationNotFound 预约不存在
	ErrReservationNotFound = apperrors.New(apperrors.ErrCodeReservationNotFound, "预约不存在")

	// ErrInvalidDueDate 预约期限必须晚于当前时间
	ErrInvalidDueDate = apperrors.ErrInvalidDueDate

	// ErrDuplicateReservation 该读者已有此书的ACTIVE预约
	ErrDuplicateReservation = apperrors.NewReason(apperrors.ErrCodeDuplicateReservation, apperrors.ReasonDuplicateReservation, "您已预约过该图书")

	// ErrCopiesAvailable 仍有可借副本,应直接借阅
	ErrCopiesAvailable = apperrors.NewReason(apperrors.ErrCodeCopiesAvailable, apperrors.ReasonCopiesAvailable, "该图书有可借副本,请直接借阅")

	// ErrNoCopyToReserve 没有可预约的副本
	ErrNoCopyToReserve = apperrors.NewReason(apperrors.ErrCodeNoCopyToReserve, apperrors.ReasonNoCopyToReserve, "没有可预约的副本")

	// ErrCopyAlreadyReserved 副本已有ACTIVE预约(唯一索引冲突)
	ErrCopyAlreadyReserved = apperrors.ErrConcurrentUpdate
)
