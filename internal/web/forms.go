package web

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NonFieldErrors 不属于具体字段的表单错误键
const NonFieldErrors = "__all__"

// FormErrors 按字段名收集表单错误
type FormErrors map[string][]string

func (e FormErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FormErrors) Any() bool {
	return len(e) > 0
}

// BindErrors 把 gin 绑定返回的校验错误转换成字段错误，字段名取 form 标签
func BindErrors(err error) FormErrors {
	out := FormErrors{}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		out.Add(NonFieldErrors, err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(strings.ToLower(fe.Field()), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "numeric":
		return "Select a valid choice."
	}
	return "Enter a valid value."
}
