package util

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var registerOnce sync.Once

// ValidateSlug 验证分组地址只包含字母、数字、下划线和连字符
func ValidateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// RegisterValidators 给 gin 的校验器注册自定义规则，错误中的字段名改用 form/json 标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("slug", ValidateSlug); err != nil {
			Logger.Error("注册 slug 校验器失败", Error(err))
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}
