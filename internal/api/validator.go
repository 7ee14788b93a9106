package api

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("reservation_status", func(fl validator.FieldLevel) bool {
		return reservation.Status(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return payment.Method(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsKnown()
	})
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
