package ledger

import (
	"guestsync/internal/config"
	"guestsync/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type LedgerApi struct {
	controller *LedgerController
	config     *config.Config
}

func NewLedgerApi(controller *LedgerController, config *config.Config) *LedgerApi {
	return &LedgerApi{
		controller: controller,
		config:     config,
	}
}

func (h *LedgerApi) Setup(app *fiber.App) {
	app.Get("/api/ledger/stream", websocket.New(h.controller.HandleStream))

	ledger := app.Group("/api/ledger", middleware.AuthMiddleware(h.config.SkipAuth))
	ledger.Post("/export", h.controller.ExportLedger)
	ledger.Get("/:tenantID", h.controller.RecentEntries)
}
