package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/api"
)

type ClientHandler struct {
	service ReservationServiceInterface
}

func NewClientHandler(s ReservationServiceInterface) *ClientHandler {
	return &ClientHandler{service: s}
}

// Reservations godoc
// @Summary 顧客の予約一覧を取得
// @Tags clients
// @Produce json
// @Param client_id path string true "顧客ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Router /clients/{client_id}/reservations [get]
func (h *ClientHandler) Reservations(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	reservations, err := h.service.GetClientReservations(c.Request().Context(), c.Param("client_id"), limit, offset)
	if err != nil {
		return api.ToHTTPError(err)
	}
	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Debt godoc
// @Summary 顧客の債務状況を取得
// @Tags clients
// @Produce json
// @Param client_id path string true "顧客ID"
// @Success 200 {object} DebtResponse
// @Router /clients/{client_id}/debt [get]
func (h *ClientHandler) Debt(c echo.Context) error {
	d, err := h.service.GetClientDebt(c.Request().Context(), c.Param("client_id"))
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toDebtResponse(d))
}
