package register_service

import (
	"errors"
	"fmt"
)

// 终态错误：命中后注册流程不再重试
var (
	// ErrUnsupported 运行环境不具备推送能力
	ErrUnsupported = errors.New("push is not supported in this environment")

	// ErrPermissionDenied 用户明确拒绝了通知权限
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrConfiguration 服务端凭据缺失或不合法
	ErrConfiguration = errors.New("push configuration is missing or invalid")
)

// TransientError 可重试的临时故障
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient 包装一个可重试错误
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTerminal 判断错误是否为终态
func IsTerminal(err error) bool {
	return errors.Is(err, ErrUnsupported) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrConfiguration)
}

// IsTransient 判断错误是否可重试
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
