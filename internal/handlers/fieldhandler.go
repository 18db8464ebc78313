package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck/internal/dtos"
	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/store"
)

// FieldHandler serves the custom-field schema endpoints.
type FieldHandler struct {
	Schema *store.SchemaStore
	Log    logger.Logger
}

func NewFieldHandler(schema *store.SchemaStore, log logger.Logger) *FieldHandler {
	return &FieldHandler{Schema: schema, Log: log}
}

// ListFields is GET /fields.
func (h *FieldHandler) ListFields(c *gin.Context) {
	fields, err := h.Schema.Fields(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fields: " + err.Error()})
		return
	}
	if fields == nil {
		fields = []models.CustomField{}
	}
	c.JSON(http.StatusOK, fields)
}

// UpsertField is POST /fields. Posting a name whose derived id already
// exists overwrites that field in place.
func (h *FieldHandler) UpsertField(c *gin.Context) {
	var req dtos.UpsertFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	id, err := h.Schema.UpsertField(c.Request.Context(), req.Name, models.ParseFieldType(req.Type))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert field: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
