package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"soporte/pkg/helpdeskquery"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("query_token", isQueryToken); err != nil {
		return err
	}
	if err := v.RegisterValidation("sort_dir", isSortDir); err != nil {
		return err
	}
	return nil
}

// isQueryToken - base64-токен сохранённого запроса
func isQueryToken(fl validator.FieldLevel) bool {
	return helpdeskquery.IsValidToken(fl.Field().String())
}

// isSortDir - направление сортировки DataTables, регистр не важен
func isSortDir(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "asc", "desc":
		return true
	}
	return false
}
