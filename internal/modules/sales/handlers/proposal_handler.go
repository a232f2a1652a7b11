package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/services"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
}

func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// RegisterRoutes mounts /proposals. Authenticate must already be installed.
func (h *ProposalHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/proposals", auth.RequireAuth())
	g.Post("/", auth.RequireRole(auth.RoleClient), h.GenerateProposal)
	g.Get("/", h.ListProposals)
	g.Patch("/:id/status", h.UpdateStatus)
}

// GenerateProposal godoc
// @Summary Generate a proposal
// @Description Generate a business proposal from a business description and save it. When saving fails the generated proposal is still returned with saved=false.
// @Tags Proposals
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.GenerateProposalRequest true "Business description"
// @Success 201 {object} models.GenerateProposalResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /proposals [post]
func (h *ProposalHandler) GenerateProposal(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.GenerateProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	resp, err := h.proposalService.Generate(c.UserContext(), a, req.Business)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListProposals godoc
// @Summary List proposals
// @Description Clients see their own proposals, support sees all. Newest first.
// @Tags Proposals
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param status query string false "Filter by status (pending, accepted, rejected)"
// @Success 200 {array} models.Proposal
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /proposals [get]
func (h *ProposalHandler) ListProposals(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	proposals, err := h.proposalService.List(c.UserContext(), a, models.ProposalStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(proposals)
}

// UpdateStatus godoc
// @Summary Update proposal status
// @Description Set a proposal to pending, accepted or rejected
// @Tags Proposals
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Proposal ID"
// @Param request body models.UpdateProposalStatusRequest true "New status"
// @Success 200 {object} models.Proposal
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /proposals/{id}/status [patch]
func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid proposal ID"})
	}

	var req models.UpdateProposalStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	p, err := h.proposalService.UpdateStatus(c.UserContext(), a, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(p)
}
