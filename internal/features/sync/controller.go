package sync

import (
	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

// ProcessContact godoc
// @Summary Sync one contact event
// @Description Runs the contact through the decision pipeline; always answers 200 with a structured result
// @Tags sync
// @Accept json
// @Produce json
// @Param event body ContactEvent true "Contact event"
// @Success 200 {object} Result
// @Failure 400 {object} map[string]interface{}
// @Router /webhook/contact [post]
func (ctrl *SyncController) ProcessContact(c *fiber.Ctx) error {
	var event ContactEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := ctrl.Service.ProcessContact(c.UserContext(), event)
	return c.JSON(result)
}

// ProcessBatch godoc
// @Summary Sync a batch of contact events
// @Description Processes events one at a time with failure isolation
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} BatchSummary
// @Failure 400 {object} map[string]interface{}
// @Router /webhook/contacts [post]
func (ctrl *SyncController) ProcessBatch(c *fiber.Ctx) error {
	var body struct {
		Events []ContactEvent `json:"events"`
	}
	if err := c.BodyParser(&body); err != nil {
		// Tolerate a bare array body as well
		var events []ContactEvent
		if err := c.BodyParser(&events); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		body.Events = events
	}

	summary := ctrl.Service.ProcessBatch(c.UserContext(), body.Events)
	return c.JSON(summary)
}
