package public

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const activationCodeTag = "activation_code"

var (
	activationCodePattern = regexp.MustCompile(`^\d{4}$`)
	registerOnce          sync.Once
	registerErr           error
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected binding validator engine")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		registerErr = v.RegisterValidation(activationCodeTag, validateActivationCode)
	})
	return registerErr
}

func validateActivationCode(fl validator.FieldLevel) bool {
	return activationCodePattern.MatchString(fl.Field().String())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// validationMessage 将绑定错误转换为 "字段: 原因" 形式
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "request body: invalid JSON"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), describeRule(fe)))
	}
	return strings.Join(parts, "; ")
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case activationCodeTag:
		return "must be a 4-digit numeric code"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
