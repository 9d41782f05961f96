package service

import "yatube/internal/errors"

// FieldError 标记校验失败的表单字段，处理器据此把错误显示在对应输入框下
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "invalid field " + e.Field
}

func fieldError(field, message string) error {
	return errors.Wrap(errors.ErrValidation, message, &FieldError{Field: field})
}
