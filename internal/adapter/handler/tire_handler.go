package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (h *HTTPHandler) registerTireRoutes(router gin.IRouter) {
	tires := router.Group("/tires")
	{
		tires.POST("", h.CreateTire)
		tires.GET("", h.ListActiveTires)
		tires.GET("/checked", h.ListCheckedTires)
		tires.GET("/cancelled", h.ListCancelledTires)
		tires.GET("/dashboard", h.TireDashboard)
		tires.GET("/:id", h.GetTire)
		tires.PUT("/:id", h.UpdateTire)
		tires.DELETE("/:id", h.RemoveTire)
		tires.POST("/:id/cancel", h.CancelTire)
		tires.POST("/:id/share", h.ShareTire)
	}
}

func tireQuery(c *gin.Context) service.TireQuery {
	return service.TireQuery{
		Status:    domain.TireStatus(c.Query("status")),
		Account:   c.Query("account"),
		Brand:     c.Query("brand"),
		Group:     domain.Group(c.Query("group")),
		Season:    domain.Season(c.Query("season")),
		Warehouse: domain.Warehouse(c.Query("warehouse")),
		Window:    domain.DateWindow(c.DefaultQuery("date_filter", c.Query("tarih_filtresi"))),
		Start:     c.Query("start"),
		End:       c.Query("end"),
	}
}

func (h *HTTPHandler) CreateTire(c *gin.Context) {
	var in service.TireInput
	if !h.bind(c, &in) {
		return
	}
	t, err := h.tires.CreateTire(c.Request.Context(), actor(c), in)
	if err != nil {
		h.fail(c, "create tire record", err)
		return
	}
	h.log.Infof("Tire record created: ID %d, %s", t.ID, t)
	SuccessResponse(c, http.StatusCreated, "Tire record created successfully", t)
}

func (h *HTTPHandler) GetTire(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.tires.GetTire(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "get tire record", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tire record retrieved successfully", t)
}

func (h *HTTPHandler) UpdateTire(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.TireInput
	if !h.bind(c, &in) {
		return
	}
	t, err := h.tires.UpdateTire(c.Request.Context(), actor(c), id, in)
	if err != nil {
		h.fail(c, "update tire record", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tire record updated successfully", t)
}

func (h *HTTPHandler) RemoveTire(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.tires.RemoveTire(c.Request.Context(), actor(c), id); err != nil {
		h.fail(c, "remove tire record", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tire record removed successfully", nil)
}

func (h *HTTPHandler) CancelTire(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CancelRequest
	if !h.bind(c, &req) {
		return
	}
	t, err := h.tires.CancelTire(c.Request.Context(), actor(c), id, req.Reason)
	if err != nil {
		h.fail(c, "cancel tire record", err)
		return
	}
	h.log.Infof("Tire record cancelled: ID %d", t.ID)
	SuccessResponse(c, http.StatusOK, "Tire record cancelled", t)
}

func (h *HTTPHandler) ShareTire(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	share, err := h.tires.ShareTire(c.Request.Context(), actor(c), id)
	if err != nil {
		h.fail(c, "share tire record", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Share message prepared", share)
}

// ListActiveTires returns the open ledger; format=csv streams an export.
func (h *HTTPHandler) ListActiveTires(c *gin.Context) {
	records, err := h.tires.ListActive(c.Request.Context(), actor(c), tireQuery(c))
	if err != nil {
		h.fail(c, "list tire records", err)
		return
	}
	if strings.EqualFold(c.Query("format"), "csv") {
		h.writeTireCSV(c, "lastik_envanteri.csv", records)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tire records retrieved successfully", records)
}

func (h *HTTPHandler) ListCheckedTires(c *gin.Context) {
	report, err := h.tires.ListChecked(c.Request.Context(), actor(c), tireQuery(c))
	if err != nil {
		h.fail(c, "list checked tire records", err)
		return
	}
	if strings.EqualFold(c.Query("format"), "csv") {
		h.writeTireCSV(c, "kontrol_edilen_lastikler.csv", report.Records)
		return
	}
	SuccessResponse(c, http.StatusOK, "Checked tire records retrieved successfully", report)
}

func (h *HTTPHandler) ListCancelledTires(c *gin.Context) {
	records, err := h.tires.ListCancelled(c.Request.Context(), actor(c), tireQuery(c))
	if err != nil {
		h.fail(c, "list cancelled tire records", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cancelled tire records retrieved successfully", records)
}

func (h *HTTPHandler) TireDashboard(c *gin.Context) {
	summary, err := h.tires.Dashboard(c.Request.Context(), actor(c))
	if err != nil {
		h.fail(c, "build tire dashboard", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tire dashboard", summary)
}

var tireCSVHeader = []string{
	"Cari", "Ürün", "Marka", "Grup", "Mevsim", "Adet", "Birim Fiyat",
	"Toplam Fiyat", "Durum", "Ambar", "Açıklama", "Ödeme", "Oluşturma Tarihi",
}

func (h *HTTPHandler) writeTireCSV(c *gin.Context, filename string, records []domain.TireRecord) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(tireCSVHeader)
	for _, t := range records {
		_ = w.Write([]string{
			t.Account,
			t.Product,
			t.Brand,
			string(t.Group),
			string(t.Season),
			strconv.Itoa(t.Quantity),
			t.UnitPrice.StringFixed(2),
			t.TotalPrice.StringFixed(2),
			t.Status.Label(),
			string(t.Warehouse),
			t.Note,
			string(t.Payment),
			t.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.WithError(err).Error("Failed to write tire CSV export")
	}
}
