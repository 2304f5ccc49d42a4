package mapping

import (
	"guestsync/internal/config"
	"guestsync/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MappingApi struct {
	controller *MappingController
	config     *config.Config
}

func NewMappingApi(controller *MappingController, config *config.Config) *MappingApi {
	return &MappingApi{
		controller: controller,
		config:     config,
	}
}

func (h *MappingApi) Setup(app *fiber.App) {
	mappings := app.Group("/api/mappings", middleware.AuthMiddleware(h.config.SkipAuth))

	mappings.Post("/", h.controller.CreateMapping)
	mappings.Post("/onboard", h.controller.Onboard)
	mappings.Post("/import", h.controller.ImportMappings)
	mappings.Get("/tenant/:tenantID", h.controller.ListMappings)
	mappings.Get("/:deviceID", h.controller.GetMapping)
}
