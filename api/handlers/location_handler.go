package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chips520/wms-simple-version/internal/models"
	"github.com/chips520/wms-simple-version/internal/repository"
	"github.com/chips520/wms-simple-version/internal/service"
)

// LocationHandler handles location record requests
type LocationHandler struct {
	service service.LocationService
	log     *logrus.Logger
}

// NewLocationHandler creates a new LocationHandler instance
func NewLocationHandler(svc service.LocationService, log *logrus.Logger) *LocationHandler {
	return &LocationHandler{
		service: svc,
		log:     log,
	}
}

// CreateLocation handles creation of a location record
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req models.LocationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	location, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.log.WithError(err).Error("Failed to create location")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create location",
		})
		return
	}

	c.JSON(http.StatusCreated, location)
}

// GetLocation handles retrieval of a single location record
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := h.locationID(c)
	if !ok {
		return
	}

	location, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get location")
		return
	}

	c.JSON(http.StatusOK, location)
}

// ListLocations handles listing location records with optional equality
// filters and pagination. An explicitly empty material_id filter is honored,
// so cleared records can be listed.
func (h *LocationHandler) ListLocations(c *gin.Context) {
	var query service.ListQuery

	if materialID, ok := c.GetQuery("material_id"); ok {
		query.MaterialID = &materialID
	}
	if trayNumber, ok := c.GetQuery("tray_number"); ok {
		query.TrayNumber = &trayNumber
	}

	skip, ok := h.intQuery(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := h.intQuery(c, "limit", service.DefaultListLimit)
	if !ok {
		return
	}
	query.Skip = skip
	query.Limit = limit

	locations, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		h.log.WithError(err).Error("Failed to list locations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list locations",
		})
		return
	}

	c.JSON(http.StatusOK, locations)
}

// UpdateLocation handles a sparse update of a location record
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := h.locationID(c)
	if !ok {
		return
	}

	var update models.LocationUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	location, err := h.service.Update(c.Request.Context(), id, &update)
	if err != nil {
		h.respondError(c, err, "Failed to update location")
		return
	}

	c.JSON(http.StatusOK, location)
}

// DeleteLocation handles hard deletion of a location record
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, ok := h.locationID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete location")
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearLocation handles clearing a single location by ID
func (h *LocationHandler) ClearLocation(c *gin.Context) {
	var req models.ClearLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	location, err := h.service.ClearByID(c.Request.Context(), req.LocationID)
	if err != nil {
		h.respondError(c, err, "Failed to clear location")
		return
	}

	c.JSON(http.StatusOK, location)
}

// ClearByMaterialTray handles clearing the location matching a material and
// tray combination. Both criteria are required.
func (h *LocationHandler) ClearByMaterialTray(c *gin.Context) {
	var req models.ClearByMaterialTrayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "material_id and tray_number are required",
		})
		return
	}

	location, err := h.service.ClearByMaterialTray(c.Request.Context(), req.MaterialID, req.TrayNumber)
	if err != nil {
		h.respondError(c, err, "Failed to clear location by material and tray")
		return
	}

	c.JSON(http.StatusOK, location)
}

// BatchUpdateLocations handles a best-effort batch of sparse updates.
// Missing IDs are omitted from the response, never reported as errors.
func (h *LocationHandler) BatchUpdateLocations(c *gin.Context) {
	var req models.BatchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	updated, err := h.service.BatchUpdate(c.Request.Context(), req.Updates)
	if err != nil {
		h.log.WithError(err).Error("Failed to batch update locations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to batch update locations",
		})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// BatchClearLocations handles a best-effort batch clear by IDs
func (h *LocationHandler) BatchClearLocations(c *gin.Context) {
	var req models.BatchClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	cleared, err := h.service.BatchClear(c.Request.Context(), req.LocationIDs)
	if err != nil {
		h.log.WithError(err).Error("Failed to batch clear locations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to batch clear locations",
		})
		return
	}

	c.JSON(http.StatusOK, cleared)
}

// locationID parses the :id path parameter, writing a 400 response on
// malformed input
func (h *LocationHandler) locationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid location ID",
		})
		return 0, false
	}
	return id, true
}

// intQuery parses a non-negative integer query parameter, writing a 400
// response on malformed input
func (h *LocationHandler) intQuery(c *gin.Context, name string, defaultValue int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return defaultValue, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return value, true
}

// respondError maps service errors to HTTP responses
func (h *LocationHandler) respondError(c *gin.Context, err error, message string) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Location not found",
		})
		return
	}
	h.log.WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": message,
	})
}
