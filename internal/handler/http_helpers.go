package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/contactbook/internal/locale"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var fieldNamesOnce sync.Once

// registerJSONFieldNames 让校验错误使用 JSON 字段名而不是 Go 字段名
func registerJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, language string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err, language))
		return false
	}
	return true
}

func bindingMessage(err error, language string) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return locale.Pick(language, "Invalid request body", "请求参数格式错误")
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, locale.Pick(language,
				fmt.Sprintf("%s is required", field),
				fmt.Sprintf("%s 不能为空", field)))
		case "max":
			parts = append(parts, locale.Pick(language,
				fmt.Sprintf("%s must be at most %s characters", field, fe.Param()),
				fmt.Sprintf("%s 长度不能超过 %s 个字符", field, fe.Param())))
		default:
			parts = append(parts, locale.Pick(language,
				fmt.Sprintf("%s is invalid", field),
				fmt.Sprintf("%s 格式不正确", field)))
		}
	}
	return strings.Join(parts, "; ")
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
