package shared

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	hexColor6Pattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	registerOnce     sync.Once
)

// RegisterValidators 向 gin 绑定引擎注册自定义校验标签：slug、hexcolor6
func RegisterValidators() {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = engine.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return hexColor6Pattern.MatchString(fl.Field().String())
		})
	})
}
