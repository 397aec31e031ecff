package circulation

import (
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

var (
	// ErrNoCopy 没有可借副本
	ErrNoCopy = apperrors.NewReason(apperrors.ErrCodeNoCopyAvailable, apperrors.ReasonNoCopy, "没有可借的副本")

	// ErrForbidden 无权执行该操作
	ErrForbidden = apperrors.ErrForbidden

	// ErrUnauthenticated 缺少调用者身份
	ErrUnauthenticated = apperrors.ErrUnauthorized
)
