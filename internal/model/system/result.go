/**
 * 模型:业务结果
 * @description: 服务层统一返回的带标签结果，Success 携带数据，Failure 携带业务码与提示信息
 * @func: ResultCode、Result[T]
 */
package system

import "net/http"

// ResultCode 业务结果码
type ResultCode int

const (
	CodeSuccess ResultCode = 0

	// 通用错误 1xxx
	CodeError           ResultCode = 1000
	CodeValidationError ResultCode = 1001
	CodeNotFound        ResultCode = 1002
	CodeAlreadyExists   ResultCode = 1003
	CodeOperationDenied ResultCode = 1004

	// 认证授权 2xxx
	CodeUnauthorized     ResultCode = 2001
	CodePermissionDenied ResultCode = 2002
	CodeInvalidToken     ResultCode = 2003
	CodeAccountDisabled  ResultCode = 2004

	// 业务错误 3xxx
	CodeInvalidCredentials     ResultCode = 3001
	CodeUserNotFound           ResultCode = 3002
	CodeRoleNotFound           ResultCode = 3003
	CodeMenuNotFound           ResultCode = 3004
	CodeCannotDeleteSystemRole ResultCode = 3005
	CodeCannotModifySuperAdmin ResultCode = 3006
	CodeNoMenusGranted         ResultCode = 3007

	// 系统错误 5xxx
	CodeInternalError        ResultCode = 5000
	CodeDatabaseError        ResultCode = 5001
	CodeExternalServiceError ResultCode = 5002
)

// IsSystemError 5xxx 为系统故障，其余失败为业务失败
func (c ResultCode) IsSystemError() bool {
	return c >= 5000
}

// HTTPStatus 失败结果默认对应的 HTTP 状态码
func (c ResultCode) HTTPStatus() int {
	switch {
	case c == CodeSuccess:
		return http.StatusOK
	case c.IsSystemError():
		return http.StatusInternalServerError
	case c == CodeUnauthorized || c == CodeInvalidToken || c == CodeInvalidCredentials:
		return http.StatusUnauthorized
	case c == CodePermissionDenied || c == CodeAccountDisabled || c == CodeOperationDenied:
		return http.StatusForbidden
	case c == CodeAlreadyExists:
		return http.StatusConflict
	case c == CodeNotFound || c == CodeUserNotFound || c == CodeRoleNotFound || c == CodeMenuNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Result 业务结果
// Err 保存导致失败的原始错误，不参与序列化
type Result[T any] struct {
	Success bool       `json:"success"`
	Code    ResultCode `json:"code"`
	Message string     `json:"message"`
	Data    T          `json:"data"`
	Err     error      `json:"-"`
}

// Success 构造成功结果
func Success[T any](data T, message string) Result[T] {
	if message == "" {
		message = "操作成功"
	}
	return Result[T]{Success: true, Code: CodeSuccess, Message: message, Data: data}
}

// Failure 构造失败结果
func Failure[T any](code ResultCode, message string) Result[T] {
	return Result[T]{Code: code, Message: message}
}

// FailureWithError 构造携带原始错误的失败结果
func FailureWithError[T any](code ResultCode, message string, err error) Result[T] {
	return Result[T]{Code: code, Message: message, Err: err}
}

// IsSuccess 是否成功
func (r Result[T]) IsSuccess() bool {
	return r.Success
}

// Unwrap 返回原始错误，使 errors.Is/As 可以穿透 Result
func (r Result[T]) Unwrap() error {
	return r.Err
}

// Error 失败结果的描述
func (r Result[T]) Error() string {
	if r.Err != nil {
		return r.Message + ": " + r.Err.Error()
	}
	return r.Message
}
