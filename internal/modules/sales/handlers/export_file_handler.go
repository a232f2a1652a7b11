package handlers

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/services"
)

// ExportFileHandler serves quotation exports kept by the local storage provider.
// Files live under {basePath}/quotations/{id}/ and are only handed to callers who may read that quotation.
type ExportFileHandler struct {
	quotationService *services.QuotationService
	basePath         string
}

func NewExportFileHandler(quotationService *services.QuotationService, basePath string) *ExportFileHandler {
	return &ExportFileHandler{
		quotationService: quotationService,
		basePath:         basePath,
	}
}

// RegisterRoutes mounts /exports. Authenticate must already be installed.
func (h *ExportFileHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/exports", auth.RequireAuth())
	g.Get("/quotations/:id/:name", h.GetFile)
}

// GetFile godoc
// @Summary Download a stored quotation export
// @Description Serves a file written by POST /quotations/{id}/export to the quotation's owner or support
// @Tags Quotations
// @Produce octet-stream
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Quotation ID"
// @Param name path string true "File name"
// @Success 200 {file} file
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /exports/quotations/{id}/{name} [get]
func (h *ExportFileHandler) GetFile(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quotation ID"})
	}

	name := c.Params("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file name"})
	}

	if _, err := h.quotationService.Get(c.UserContext(), a, id); err != nil {
		return respondError(c, err)
	}

	f, err := os.Open(filepath.Join(h.basePath, "quotations", id.String(), name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		return respondError(c, err)
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	}

	c.Type(filepath.Ext(name))
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	// fasthttp closes f once the body is written
	return c.SendStream(f, int(info.Size()))
}
