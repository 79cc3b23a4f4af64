package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaegodata/unsold-server/internal/models"
	"github.com/jaegodata/unsold-server/internal/service"
	"github.com/jaegodata/unsold-server/internal/session"
)

// Handler holds the API dependencies
type Handler struct {
	svc      service.Service
	sessions *session.Manager
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, sessions *session.Manager) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
	}
}

// SetupRoutes registers all API routes on the router. One route group per
// screen of the original form application.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/auth/login", h.Login)

	authed := api.Group("", AuthMiddleware(h.sessions))
	{
		authed.POST("/auth/password", h.ChangePassword)

		authed.GET("/products/search", h.SearchProducts)
		authed.POST("/products", h.RegisterProduct)
		authed.POST("/products/bulk", h.RegisterBulk)
		authed.PUT("/products/:key/note", h.SaveNote)
		authed.POST("/products/:key/delete", h.DeleteProduct)
		authed.POST("/products/:key/delete/cancel", h.CancelDelete)

		authed.POST("/imports/spreadsheet", h.ImportSpreadsheet)

		admin := authed.Group("", AdminMiddleware())
		{
			admin.POST("/reports/reconciliation", h.Reconcile)
			admin.GET("/logs", h.RecentLogs)
		}
	}
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChangePassword handles POST /api/auth/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "old, new and confirmation passwords are required")
		return
	}

	username := c.GetString("username")
	if err := h.svc.ChangePassword(c.Request.Context(), username, req); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "password changed"})
}

// RegisterProduct handles POST /api/products
func (h *Handler) RegisterProduct(c *gin.Context) {
	var req models.RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "product number (max 20 chars) and RFID are required")
		return
	}

	result, err := h.svc.RegisterProduct(c.Request.Context(), c.GetString("username"), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	switch result.Status {
	case models.RowRegistered:
		c.JSON(http.StatusCreated, result)
	case models.RowDuplicate:
		c.JSON(http.StatusConflict, result)
	case models.RowPriceFailed:
		c.JSON(http.StatusBadGateway, result)
	case models.RowMissing:
		c.JSON(http.StatusBadRequest, result)
	default:
		c.JSON(http.StatusInternalServerError, result)
	}
}

// RegisterBulk handles POST /api/products/bulk
func (h *Handler) RegisterBulk(c *gin.Context) {
	var req models.BulkRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "at least one item with product number and RFID is required")
		return
	}

	resp, err := h.svc.RegisterBulk(c.Request.Context(), c.GetString("username"), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	// Partial success is the designed behavior, so the batch itself is 200
	c.JSON(http.StatusOK, resp)
}

// ImportSpreadsheet handles POST /api/imports/spreadsheet
func (h *Handler) ImportSpreadsheet(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "an .xlsx file upload is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "could not read uploaded file")
		return
	}
	defer file.Close()

	sess := c.MustGet("session").(*session.Session)
	resp, err := h.svc.ImportSpreadsheet(c.Request.Context(), c.GetString("username"), sess, file)
	if err != nil {
		if errors.Is(err, service.ErrImportDone) {
			h.renderError(c, err)
			return
		}
		// Past the one-shot check, errors mean the file itself was bad:
		// missing columns or not a readable workbook
		badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SearchProducts handles GET /api/products/search
func (h *Handler) SearchProducts(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "query is required; sort must be one of oldest, newest, price_asc, price_desc")
		return
	}

	sess := c.MustGet("session").(*session.Session)
	resp, err := h.svc.SearchProducts(c.Request.Context(), sess, req.Query, req.Sort)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveNote handles PUT /api/products/:key/note
func (h *Handler) SaveNote(c *gin.Context) {
	var req models.SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "note body is required")
		return
	}

	key := c.Param("key")
	if err := h.svc.SaveNote(c.Request.Context(), c.GetString("username"), key, req.Note); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "note saved"})
}

// DeleteProduct handles POST /api/products/:key/delete
func (h *Handler) DeleteProduct(c *gin.Context) {
	sess := c.MustGet("session").(*session.Session)
	resp, err := h.svc.DeleteProduct(c.Request.Context(), c.GetString("username"), sess, c.Param("key"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	if resp.Status == "confirm" {
		c.JSON(http.StatusAccepted, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelDelete handles POST /api/products/:key/delete/cancel
func (h *Handler) CancelDelete(c *gin.Context) {
	sess := c.MustGet("session").(*session.Session)
	c.JSON(http.StatusOK, h.svc.CancelDelete(sess, c.Param("key")))
}

// Reconcile handles POST /api/reports/reconciliation
func (h *Handler) Reconcile(c *gin.Context) {
	var req models.ReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ediAmount, posAmount and a discountRate of 10, 15 or 19 are required")
		return
	}

	resp, err := h.svc.Reconcile(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecentLogs handles GET /api/logs
func (h *Handler) RecentLogs(c *gin.Context) {
	resp, err := h.svc.RecentLogs(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// renderError maps service failures to HTTP statuses. Every message is
// plain text for the user; nothing propagates past the handler.
func (h *Handler) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "operation failed"

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrMissingFields):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrImportDone):
		status = http.StatusConflict
		message = err.Error()
	}

	c.JSON(status, models.ErrorResponse{Status: "error", Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Message: message})
}
