package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/msribeiro2010/napje-pje-proxy/shared"
)

// AdminHandler exposes the rate-limit admin surface. Routes are mounted
// behind the admin-flag check.
type AdminHandler struct {
	rateLimitSvc RateLimitServiceInterface
}

func NewAdminHandler(rateLimitSvc RateLimitServiceInterface) *AdminHandler {
	return &AdminHandler{rateLimitSvc: rateLimitSvc}
}

// @Summary Rate Limit Stats
// @Description Current rate limiter configuration and active window count
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.RateLimitStats
// @Router /api/admin/rate-limits [get]
func (h *AdminHandler) GetRateLimitStats(c *fiber.Ctx) error {
	stats, err := h.rateLimitSvc.Stats(c)
	if err != nil {
		return shared.NewInternalError(err, "Failed to read rate limit stats")
	}
	return shared.ResponseData(c, fiber.StatusOK, stats)
}

// @Summary Reset Rate Limit
// @Description Clear the current window for one caller key
// @Tags admin
// @Produce json
// @Security Bearer
// @Param identifier path string true "Caller key (user id or IP)"
// @Success 200 {object} map[string]string
// @Router /api/admin/rate-limits/{identifier} [delete]
func (h *AdminHandler) ResetRateLimit(c *fiber.Ctx) error {
	identifier := c.Params("identifier")
	if identifier == "" {
		return shared.NewBadRequestError(nil, "Missing identifier")
	}

	if err := h.rateLimitSvc.ResetKey(c, identifier); err != nil {
		return shared.NewInternalError(err, "Failed to reset rate limit")
	}

	return shared.ResponseData(c, fiber.StatusOK, fiber.Map{"reset": identifier})
}
