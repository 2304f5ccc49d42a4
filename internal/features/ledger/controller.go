package ledger

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type LedgerController struct {
	Service LedgerService
}

func NewLedgerController(service LedgerService) *LedgerController {
	return &LedgerController{
		Service: service,
	}
}

// RecentEntries godoc
// @Summary Recent ledger entries
// @Description Reverse-chronological sync attempts for a tenant
// @Tags ledger
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param limit query int false "Max entries (default 20)"
// @Success 200 {array} Entry
// @Failure 500 {object} map[string]interface{}
// @Router /api/ledger/{tenantID} [get]
func (ctrl *LedgerController) RecentEntries(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	entries, err := ctrl.Service.Recent(c.UserContext(), c.Params("tenantID"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": entries,
	})
}

// ExportLedger godoc
// @Summary Export ledger to warehouse
// @Description Pushes entries since the last export to the reporting Postgres
// @Tags ledger
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/ledger/export [post]
func (ctrl *LedgerController) ExportLedger(c *fiber.Ctx) error {
	count, err := ctrl.Service.Export(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    err.Error(),
			"exported": count,
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Export complete",
		"exported": count,
	})
}

// HandleStream tails new ledger entries over a websocket connection.
func (ctrl *LedgerController) HandleStream(c *websocket.Conn) {
	ch := ctrl.Service.Stream().Subscribe()
	defer ctrl.Service.Stream().Unsubscribe(ch)

	for entry := range ch {
		if err := c.WriteJSON(entry); err != nil {
			break
		}
	}
}
