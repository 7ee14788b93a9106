package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
)

type errorMapping struct {
	target error
	code   int
}

// 先に一致したものを採用する
var errorMappings = []errorMapping{
	{reservation.ErrReservationNotFound, http.StatusNotFound},
	{tourpackage.ErrPackageNotFound, http.StatusNotFound},

	{reservation.ErrClientHasOutstandingDebt, http.StatusConflict},
	{tourpackage.ErrCapacityExceeded, http.StatusConflict},
	{reservation.ErrInvalidTransition, http.StatusConflict},
	{reservation.ErrNotExpirable, http.StatusConflict},
	{payment.ErrPaymentNotAllowed, http.StatusConflict},
	{tourpackage.ErrPackageInactive, http.StatusConflict},
	{tourpackage.ErrTypeLocked, http.StatusConflict},
	{reservation.ErrNumberAlreadyExists, http.StatusConflict},
	{application.ErrPackageBusy, http.StatusConflict},

	{reservation.ErrIncompletePayment, http.StatusUnprocessableEntity},
	{payment.ErrOverpaymentNotAllowed, http.StatusUnprocessableEntity},

	{tourpackage.ErrInvalidConfiguration, http.StatusInternalServerError},

	{payment.ErrInvalidAmount, http.StatusBadRequest},
	{payment.ErrMethodRequired, http.StatusBadRequest},
	{payment.ErrReservationIDRequired, http.StatusBadRequest},
	{reservation.ErrInvalidHeadcount, http.StatusBadRequest},
	{reservation.ErrClientIDRequired, http.StatusBadRequest},
	{reservation.ErrPackageIDRequired, http.StatusBadRequest},
	{reservation.ErrInvalidTotal, http.StatusBadRequest},
	{reservation.ErrInvalidStatus, http.StatusBadRequest},
	{reservation.ErrInvalidInitialPolicy, http.StatusBadRequest},
	{tourpackage.ErrInvalidHeadcount, http.StatusBadRequest},
	{tourpackage.ErrNameRequired, http.StatusBadRequest},
	{tourpackage.ErrInvalidDuration, http.StatusBadRequest},
	{tourpackage.ErrInvalidType, http.StatusBadRequest},
	{tourpackage.ErrMixedPricing, http.StatusBadRequest},
	{tourpackage.ErrInvalidQuota, http.StatusBadRequest},
	{tourpackage.ErrInvalidRecommendedMax, http.StatusBadRequest},
}

// ToHTTPError はドメインエラーをHTTPエラーに変換する。元のエラーは Internal に保持する
func ToHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.code >= http.StatusInternalServerError {
				return echo.NewHTTPError(m.code, "パッケージの設定に不備があります").SetInternal(err)
			}
			return echo.NewHTTPError(m.code, err.Error()).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
}
