package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/api"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
)

type PackageHandler struct {
	service PackageServiceInterface
}

func NewPackageHandler(s PackageServiceInterface) *PackageHandler {
	return &PackageHandler{service: s}
}

type PackageRequest struct {
	Name             string           `json:"name" validate:"required,max=200" example:"Cusco Mágico"`
	Destination      string           `json:"destination" validate:"required,max=200" example:"Cusco"`
	DurationDays     int              `json:"duration_days" validate:"gte=0" example:"4"`
	Type             string           `json:"type" validate:"required,oneof=regular private" example:"regular"`
	PricePerPerson   *decimal.Decimal `json:"price_per_person,omitempty" swaggertype:"string" example:"200.00"`
	Quota            *int             `json:"quota,omitempty" example:"10"`
	MinQuota         *int             `json:"min_quota,omitempty" example:"2"`
	GroupPrice       *decimal.Decimal `json:"group_price,omitempty" swaggertype:"string"`
	RecommendedMax   *int             `json:"recommended_max,omitempty"`
	ExtraPersonPrice *decimal.Decimal `json:"extra_person_price,omitempty" swaggertype:"string"`
}

func (r PackageRequest) toInput() application.PackageInput {
	return application.PackageInput{
		Name: r.Name, Destination: r.Destination, DurationDays: r.DurationDays,
		Type:           tourpackage.Type(r.Type),
		PricePerPerson: r.PricePerPerson, Quota: r.Quota, MinQuota: r.MinQuota,
		GroupPrice: r.GroupPrice, RecommendedMax: r.RecommendedMax, ExtraPersonPrice: r.ExtraPersonPrice,
	}
}

// Create godoc
// @Summary パッケージを作成
// @Tags packages
// @Accept json
// @Produce json
// @Param request body PackageRequest true "パッケージ情報"
// @Success 201 {object} PackageResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /packages [post]
func (h *PackageHandler) Create(c echo.Context) error {
	var req PackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreatePackage(c.Request().Context(), req.toInput())
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toPackageResponse(p))
}

// GetByID godoc
// @Summary パッケージを取得
// @Tags packages
// @Produce json
// @Param id path string true "パッケージID"
// @Success 200 {object} PackageResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /packages/{id} [get]
func (h *PackageHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPackage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPackageResponse(p))
}

// List godoc
// @Summary パッケージ一覧を取得
// @Tags packages
// @Produce json
// @Param active_only query bool false "有効なもののみ" default(true)
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PackageResponse
// @Router /packages [get]
func (h *PackageHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("active_only") != "false"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	packages, err := h.service.ListPackages(c.Request().Context(), activeOnly, limit, offset)
	if err != nil {
		return api.ToHTTPError(err)
	}
	resp := make([]PackageResponse, len(packages))
	for i, p := range packages {
		resp[i] = toPackageResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary パッケージを更新
// @Description 予約が存在するパッケージの種別は変更できない
// @Tags packages
// @Accept json
// @Produce json
// @Param id path string true "パッケージID"
// @Param request body PackageRequest true "パッケージ情報"
// @Success 200 {object} PackageResponse
// @Failure 409 {object} api.ErrorResponse "種別変更不可"
// @Router /packages/{id} [put]
func (h *PackageHandler) Update(c echo.Context) error {
	var req PackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.UpdatePackage(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPackageResponse(p))
}

// Deactivate godoc
// @Summary パッケージを無効化
// @Tags packages
// @Produce json
// @Param id path string true "パッケージID"
// @Success 200 {object} PackageResponse
// @Router /packages/{id}/deactivate [post]
func (h *PackageHandler) Deactivate(c echo.Context) error {
	p, err := h.service.DeactivatePackage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toPackageResponse(p))
}

// Quote godoc
// @Summary 料金見積もり
// @Tags packages
// @Produce json
// @Param id path string true "パッケージID"
// @Param headcount query int true "人数"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /packages/{id}/quote [get]
func (h *PackageHandler) Quote(c echo.Context) error {
	headcount, err := strconv.Atoi(c.QueryParam("headcount"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "人数は整数で指定してください")
	}
	q, err := h.service.Quote(c.Request().Context(), c.Param("id"), headcount)
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, QuoteResponse{
		PackageID: q.PackageID, Headcount: q.Headcount, Total: money(q.Total),
		Fits: q.Fits, Availability: toAvailabilityResponse(q.Availability),
	})
}

// Availability godoc
// @Summary 空き枠を取得
// @Tags packages
// @Produce json
// @Param id path string true "パッケージID"
// @Success 200 {object} AvailabilityResponse
// @Router /packages/{id}/availability [get]
func (h *PackageHandler) Availability(c echo.Context) error {
	a, err := h.service.Availability(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, toAvailabilityResponse(a))
}
