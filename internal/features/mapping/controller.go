package mapping

import (
	"errors"

	"guestsync/pkg/normalize"

	"github.com/gofiber/fiber/v2"
)

type MappingController struct {
	Service MappingService
}

func NewMappingController(service MappingService) *MappingController {
	return &MappingController{
		Service: service,
	}
}

// CreateMapping godoc
// @Summary Create or update a device mapping
// @Description Maps an access point to a tenant; last write wins
// @Tags mappings
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/mappings [post]
func (ctrl *MappingController) CreateMapping(c *fiber.Ctx) error {
	var body struct {
		DeviceID      string `json:"device_id"`
		TenantID      string `json:"tenant_id"`
		SubVenueLabel string `json:"sub_venue_label"`
		SourceName    string `json:"source_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.DeviceID == "" || body.TenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "device_id and tenant_id are required",
		})
	}

	err := ctrl.Service.CreateOrUpdate(c.UserContext(), body.DeviceID, body.TenantID, body.SubVenueLabel, body.SourceName)
	if errors.Is(err, normalize.ErrInvalidFormat) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "device_id is not a valid MAC address",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Mapping saved",
	})
}

// Onboard godoc
// @Summary Onboard a tenant's venues
// @Description Matches venues from the directory and maps their devices
// @Tags mappings
// @Accept json
// @Produce json
// @Success 200 {object} OnboardResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/mappings/onboard [post]
func (ctrl *MappingController) Onboard(c *fiber.Ctx) error {
	var body struct {
		TenantID     string `json:"tenant_id"`
		Email        string `json:"email"`
		LocationName string `json:"location_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.TenantID == "" || body.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "tenant_id and email are required",
		})
	}

	result, err := ctrl.Service.Onboard(c.UserContext(), body.TenantID, body.Email, body.LocationName)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// ImportMappings godoc
// @Summary Import device mappings from a spreadsheet
// @Description Reads device ids and labels from an uploaded .xlsx file
// @Tags mappings
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/mappings/import [post]
func (ctrl *MappingController) ImportMappings(c *fiber.Ctx) error {
	tenantID := c.FormValue("tenant_id")
	if tenantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "tenant_id is required",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	count, err := ctrl.Service.ImportSpreadsheet(c.UserContext(), tenantID, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Import complete",
		"mapped":  count,
	})
}

// GetMapping godoc
// @Summary Resolve a device mapping
// @Tags mappings
// @Produce json
// @Param deviceID path string true "Device ID"
// @Success 200 {object} Mapping
// @Failure 404 {object} map[string]interface{}
// @Router /api/mappings/{deviceID} [get]
func (ctrl *MappingController) GetMapping(c *fiber.Ctx) error {
	m, err := ctrl.Service.Resolve(c.UserContext(), c.Params("deviceID"))
	if errors.Is(err, normalize.ErrInvalidFormat) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid device id",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "device is not mapped",
		})
	}
	return c.JSON(m)
}

// ListMappings godoc
// @Summary List a tenant's device mappings
// @Tags mappings
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} Mapping
// @Router /api/mappings/tenant/{tenantID} [get]
func (ctrl *MappingController) ListMappings(c *fiber.Ctx) error {
	mappings, err := ctrl.Service.ListByTenant(c.UserContext(), c.Params("tenantID"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"data": mappings,
	})
}
