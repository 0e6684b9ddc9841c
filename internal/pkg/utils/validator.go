/*
 * @description: 请求参数校验，基于 gin 内置的 go-playground/validator 引擎
 */

package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"rbacmaster/internal/model/system"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
	registerOnce    sync.Once
	registerErr     error
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则，重复调用只生效一次
//   - username: 3-50位字母、数字、下划线、中划线
//   - 校验错误中的字段名取 json 标签
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("binding engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		registerErr = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return IsValidUsername(fl.Field().String())
		})
	})
	return registerErr
}

// IsValidUsername 用户名格式校验
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// TranslateBindError 把 ShouldBindJSON 返回的错误转换为字段级校验错误
// 非校验错误(如 JSON 语法错误)返回单条无字段的错误
func TranslateBindError(err error) []system.ValidationError {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []system.ValidationError{{Message: "请求体格式错误"}}
	}
	out := make([]system.ValidationError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, system.ValidationError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "max":
		return fmt.Sprintf("长度不能超过%s", fe.Param())
	case "min":
		return fmt.Sprintf("长度不能少于%s", fe.Param())
	case "email":
		return "邮箱格式无效"
	case "username":
		return "用户名只能包含字母、数字、下划线和中划线，长度3-50"
	default:
		return fmt.Sprintf("校验失败: %s", fe.Tag())
	}
}
