package sync

import (
	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
}

func NewSyncApi(controller *SyncController) *SyncApi {
	return &SyncApi{
		controller: controller,
	}
}

func (h *SyncApi) Setup(app *fiber.App) {
	// Called by the upstream portal workflow; no admin auth here
	webhook := app.Group("/webhook")
	webhook.Post("/contact", h.controller.ProcessContact)
	webhook.Post("/contacts", h.controller.ProcessBatch)
}
