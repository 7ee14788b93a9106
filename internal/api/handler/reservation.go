package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/api"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/report"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

// 変更系のリクエストは操作者を必須とする
func actorFrom(c echo.Context) (string, error) {
	actor := c.Request().Header.Get("X-User-ID")
	if actor == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	return actor, nil
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"60.00"`
	Method string          `json:"method" validate:"required,payment_method" example:"cash"`
	Notes  string          `json:"notes" validate:"max=500"`
}

func (r PaymentRequest) toInput() application.PaymentInput {
	return application.PaymentInput{Amount: r.Amount, Method: payment.Method(r.Method), Notes: r.Notes}
}

type CreateReservationRequest struct {
	ClientID       string          `json:"client_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	PackageID      string          `json:"package_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
	EmployeeID     *string         `json:"employee_id,omitempty"`
	Headcount      int             `json:"headcount" validate:"required,min=1,max=500" example:"3"`
	Policy         string          `json:"policy,omitempty" validate:"omitempty,oneof=standard draft" example:"standard"`
	InitialPayment *PaymentRequest `json:"initial_payment,omitempty"`
	Comment        string          `json:"comment" validate:"max=1000"`
}

// Create godoc
// @Summary 予約を作成
// @Description 価格を算出し、債務と空き枠を確認して予約を作成する。初回支払いを同時に登録できる
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "操作者ID"
// @Param request body CreateReservationRequest true "予約情報"
// @Success 201 {object} CreateReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "債務あり・定員超過"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	input := application.CreateReservationInput{
		ClientID: req.ClientID, PackageID: req.PackageID, EmployeeID: req.EmployeeID,
		Headcount: req.Headcount, Policy: reservation.InitialPolicy(req.Policy),
		Comment: req.Comment, Actor: actor,
	}
	if req.InitialPayment != nil {
		in := req.InitialPayment.toInput()
		input.InitialPayment = &in
	}
	result, err := h.service.CreateReservation(c.Request().Context(), input)
	if err != nil {
		return api.ToHTTPError(err)
	}
	resp := CreateReservationResponse{
		Reservation: toReservationResponse(result.Reservation),
		Balance:     toBalanceResponse(result.Balance),
	}
	if result.Payment != nil {
		p := toPaymentResponse(result.Payment)
		resp.Payment = &p
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetByID godoc
// @Summary 予約詳細を取得
// @Description 支払い・状態履歴・残高・遷移可能な状態を含む
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationDetailResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	d, err := h.service.GetReservationDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationDetailResponse(d))
}

// RegisterPayment godoc
// @Summary 支払いを登録
// @Description 入金額が30%以上に達した pending_payment の予約は confirmed に遷移する
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "操作者ID"
// @Param id path string true "予約ID"
// @Param request body PaymentRequest true "支払い情報"
// @Success 201 {object} RegisterPaymentResponse
// @Failure 409 {object} api.ErrorResponse "支払い不可の状態"
// @Failure 422 {object} api.ErrorResponse "過払い"
// @Router /reservations/{id}/payments [post]
func (h *ReservationHandler) RegisterPayment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.RegisterPayment(c.Request().Context(), application.RegisterPaymentInput{
		ReservationID: c.Param("id"), Amount: req.toInput(), Actor: actor,
	})
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, RegisterPaymentResponse{
		Payment:      toPaymentResponse(result.Payment),
		Reservation:  toReservationResponse(result.Reservation),
		Balance:      toBalanceResponse(result.Balance),
		Transitioned: result.Transitioned,
	})
}

type ChangeStatusRequest struct {
	Status  string `json:"status" validate:"required,reservation_status" example:"in_service"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ChangeStatus godoc
// @Summary 予約状態を変更
// @Description in_service への遷移は全額入金が必要
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "操作者ID"
// @Param id path string true "予約ID"
// @Param request body ChangeStatusRequest true "遷移先"
// @Success 200 {object} ReservationResponse
// @Failure 409 {object} api.ErrorResponse "許可されていない遷移"
// @Failure 422 {object} api.ErrorResponse "入金不足"
// @Router /reservations/{id}/status [post]
func (h *ReservationHandler) ChangeStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req ChangeStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.ChangeReservationState(c.Request().Context(), application.ChangeStateInput{
		ReservationID: c.Param("id"), Target: reservation.Status(req.Status),
		Comment: req.Comment, Actor: actor,
	})
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

type CancelRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "操作者ID"
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req CancelRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
		}
	}
	r, err := h.service.CancelReservation(c.Request().Context(), c.Param("id"), req.Comment, actor)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Statement godoc
// @Summary 予約明細PDFを出力
// @Tags reservations
// @Produce application/pdf
// @Param id path string true "予約ID"
// @Success 200 {file} file
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id}/statement [get]
func (h *ReservationHandler) Statement(c echo.Context) error {
	d, err := h.service.GetReservationDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(err)
	}
	pdf, err := report.RenderStatement(report.Statement{
		Reservation: d.Reservation, Package: d.Package, Payments: d.Payments,
		Balance: d.Balance, IssuedAt: time.Now(),
	})
	if err != nil {
		return api.ToHTTPError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="%s.pdf"`, d.Reservation.Number))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
