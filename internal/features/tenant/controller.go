package tenant

import (
	"github.com/gofiber/fiber/v2"
)

type ConnectionController struct {
	Service ConnectionService
}

func NewConnectionController(service ConnectionService) *ConnectionController {
	return &ConnectionController{
		Service: service,
	}
}

// OAuthCallback godoc
// @Summary OAuth callback
// @Description Completes the CRM authorization-code exchange and activates the tenant
// @Tags tenants
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /oauth/callback [get]
func (ctrl *ConnectionController) OAuthCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing code parameter",
		})
	}

	conn, err := ctrl.Service.Authorize(c.UserContext(), code)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Tenant connected successfully",
		"tenant_id": conn.TenantID,
	})
}

// Uninstall godoc
// @Summary Uninstall tenant
// @Description Soft-deactivates the tenant connection
// @Tags tenants
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /oauth/uninstall [post]
func (ctrl *ConnectionController) Uninstall(c *fiber.Ctx) error {
	var body struct {
		TenantID string `json:"tenant_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.TenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "tenant_id is required",
		})
	}

	if err := ctrl.Service.Uninstall(c.UserContext(), body.TenantID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Tenant disconnected",
	})
}

// GetTenant godoc
// @Summary Get tenant connection
// @Description Returns the connection state for a tenant (tokens omitted)
// @Tags tenants
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} Connection
// @Failure 404 {object} map[string]interface{}
// @Router /api/tenants/{id} [get]
func (ctrl *ConnectionController) GetTenant(c *fiber.Ctx) error {
	conn, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "tenant not found",
		})
	}
	return c.JSON(conn)
}

// SetTagScript godoc
// @Summary Set tenant tag script
// @Description Stores a Tengo snippet evaluated per synced contact
// @Tags tenants
// @Accept json
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/tenants/{id}/tag-script [put]
func (ctrl *ConnectionController) SetTagScript(c *fiber.Ctx) error {
	var body struct {
		Script string `json:"script"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.SetTagScript(c.UserContext(), c.Params("id"), body.Script); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Tag script updated",
	})
}
