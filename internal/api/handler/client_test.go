package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
)

func TestClientHandler_Reservations(t *testing.T) {
	e := NewTestEcho()

	t.Run("顧客の予約一覧を取得できる", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("GetClientReservations", mock.Anything, "client-1", 20, 0).
			Return([]*reservation.Reservation{sampleReservation(reservation.StatusPendingPayment)}, nil)
		c, rec := newJSONContext(e, http.MethodGet, "/clients/client-1/reservations?limit=20", "", "")
		c.SetParamNames("client_id")
		c.SetParamValues("client-1")

		err := NewClientHandler(mockService).Reservations(c)

		require.NoError(t, err)
		var resp []ReservationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 1)
		mockService.AssertExpectations(t)
	})

	t.Run("取得失敗は500", func(t *testing.T) {
		mockService := new(MockReservationService)
		mockService.On("GetClientReservations", mock.Anything, "client-1", 0, 0).Return(nil, errors.New("db down"))
		c, _ := newJSONContext(e, http.MethodGet, "/clients/client-1/reservations", "", "")
		c.SetParamNames("client_id")
		c.SetParamValues("client-1")

		err := NewClientHandler(mockService).Reservations(c)

		requireHTTPCode(t, err, http.StatusInternalServerError)
	})
}

func TestClientHandler_Debt(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockReservationService)
	res := sampleReservation(reservation.StatusConfirmed)
	mockService.On("GetClientDebt", mock.Anything, "client-1").Return(&application.DebtStatus{
		ClientID:    "client-1",
		HasDebt:     true,
		Outstanding: decimal.NewFromInt(400),
		Items: []application.DebtItem{
			{Reservation: res, Balance: reservation.Balance{Total: decimal.NewFromInt(600), Paid: decimal.NewFromInt(200)}},
		},
	}, nil)
	c, rec := newJSONContext(e, http.MethodGet, "/clients/client-1/debt", "", "")
	c.SetParamNames("client_id")
	c.SetParamValues("client-1")

	err := NewClientHandler(mockService).Debt(c)

	require.NoError(t, err)
	var resp DebtResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasDebt)
	assert.Equal(t, "400.00", resp.Outstanding)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "400.00", resp.Items[0].Balance.Outstanding)
}
