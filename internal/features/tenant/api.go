package tenant

import (
	"guestsync/internal/config"
	"guestsync/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TenantApi struct {
	controller *ConnectionController
	config     *config.Config
}

func NewTenantApi(controller *ConnectionController, config *config.Config) *TenantApi {
	return &TenantApi{
		controller: controller,
		config:     config,
	}
}

func (h *TenantApi) Setup(app *fiber.App) {
	// OAuth endpoints are called by the CRM, not by our admins
	oauth := app.Group("/oauth")
	oauth.Get("/callback", h.controller.OAuthCallback)
	oauth.Post("/uninstall", h.controller.Uninstall)

	tenants := app.Group("/api/tenants", middleware.AuthMiddleware(h.config.SkipAuth))
	tenants.Get("/:id", h.controller.GetTenant)
	tenants.Put("/:id/tag-script", h.controller.SetTagScript)
}
