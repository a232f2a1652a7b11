package handlers

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/services"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

type QuotationHandler struct {
	quotationService *services.QuotationService
}

func NewQuotationHandler(quotationService *services.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// RegisterRoutes mounts /quotations. Authenticate must already be installed.
func (h *QuotationHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/quotations", auth.RequireAuth())
	g.Post("/", auth.RequireRole(auth.RoleClient), h.GenerateQuotation)
	g.Get("/", h.ListQuotations)
	g.Get("/:id", h.GetQuotation)
	g.Post("/:id/accept", h.AcceptQuotation)
	g.Get("/:id/pdf", h.DownloadPDF)
	g.Post("/:id/export", h.ExportQuotation)
	g.Get("/:id/history", h.GetHistory)
}

// GenerateQuotation godoc
// @Summary Generate a quotation
// @Description Generate a quotation for a client, parse its line items and save it. When saving fails the parsed quotation is still returned with saved=false.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.GenerateQuotationRequest true "Business description and client details"
// @Success 201 {object} models.GenerateQuotationResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /quotations [post]
func (h *QuotationHandler) GenerateQuotation(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.GenerateQuotationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	resp, err := h.quotationService.Generate(c.UserContext(), a, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListQuotations godoc
// @Summary List quotations
// @Description Clients see their own quotations, support sees all. Newest first.
// @Tags Quotations
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param status query string false "Filter by status (pending, accepted, expired)"
// @Param accepted query boolean false "Filter by accepted flag"
// @Success 200 {array} models.Quotation
// @Failure 400 {object} map[string]interface{}
// @Router /quotations [get]
func (h *QuotationHandler) ListQuotations(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	var accepted *bool
	if raw := c.Query("accepted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "accepted must be true or false"})
		}
		accepted = &v
	}

	quotations, err := h.quotationService.List(c.UserContext(), a, models.QuotationStatus(c.Query("status")), accepted)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(quotations)
}

// GetQuotation godoc
// @Summary Get quotation by ID
// @Tags Quotations
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Quotation ID"
// @Success 200 {object} models.Quotation
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetQuotation(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}

	q, err := h.quotationService.Get(c.UserContext(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// AcceptQuotation godoc
// @Summary Accept a quotation
// @Description Mark the caller's quotation as accepted and notify the sales team. Accepting an already accepted quotation returns it unchanged.
// @Tags Quotations
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Quotation ID"
// @Success 200 {object} models.Quotation
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /quotations/{id}/accept [post]
func (h *QuotationHandler) AcceptQuotation(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}

	q, err := h.quotationService.Accept(c.UserContext(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// DownloadPDF godoc
// @Summary Download quotation PDF
// @Tags Quotations
// @Produce application/pdf
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Quotation ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /quotations/{id}/pdf [get]
func (h *QuotationHandler) DownloadPDF(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}

	var buf bytes.Buffer
	contentType, name, err := h.quotationService.Render(c.UserContext(), a, id, export.FormatPDF, &buf)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(buf.Bytes())
}

// ExportQuotation godoc
// @Summary Export quotation to storage
// @Description Render the quotation and store the file, returning its location
// @Tags Quotations
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Quotation ID"
// @Param format query string false "pdf (default), xlsx or html"
// @Success 201 {object} models.ExportResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /quotations/{id}/export [post]
func (h *QuotationHandler) ExportQuotation(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.quotationService.Export(c.UserContext(), a, id, format)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.ExportResponse{
		URL:    res.URL,
		Key:    res.Key,
		Format: string(format),
		Size:   res.Size,
	})
}

// GetHistory godoc
// @Summary Quotation audit trail
// @Description Status changes and exports of a quotation, oldest first
// @Tags Quotations
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Quotation ID"
// @Success 200 {array} audit.AuditLog
// @Failure 404 {object} map[string]interface{}
// @Router /quotations/{id}/history [get]
func (h *QuotationHandler) GetHistory(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}

	logs, err := h.quotationService.History(c.UserContext(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(logs)
}
