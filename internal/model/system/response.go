/**
 * 模型:通用响应
 * @description: HTTP 接口统一响应结构
 */
package system

// APIResponse 通用API响应结构
type APIResponse struct {
	Code       int               `json:"code,omitempty"`   // 响应状态码
	Status     string            `json:"status"`           // 响应状态："success" 或 "failed"
	ResultCode ResultCode        `json:"result_code"`      // 业务结果码
	Message    string            `json:"message"`          // 响应消息
	Data       interface{}       `json:"data,omitempty"`   // 响应数据
	Error      string            `json:"error,omitempty"`  // 错误信息
	Errors     []ValidationError `json:"errors,omitempty"` // 验证错误列表
}

// FromResult 将业务结果转换为 HTTP 状态码和响应体
// status 为 0 时使用业务码默认的 HTTP 状态码；系统错误不返回原始错误信息
func FromResult[T any](r Result[T], status int) (int, APIResponse) {
	if r.IsSuccess() {
		if status == 0 {
			status = 200
		}
		return status, APIResponse{
			Code:       status,
			Status:     "success",
			ResultCode: r.Code,
			Message:    r.Message,
			Data:       r.Data,
		}
	}

	if status == 0 {
		status = r.Code.HTTPStatus()
	}
	resp := APIResponse{
		Code:       status,
		Status:     "failed",
		ResultCode: r.Code,
		Message:    r.Message,
	}
	if r.Err != nil && !r.Code.IsSystemError() {
		resp.Error = r.Err.Error()
	}
	return status, resp
}
