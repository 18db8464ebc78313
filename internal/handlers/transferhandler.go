package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck/internal/dtos"
	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/services"
	"github.com/jobdeck/jobdeck/internal/store"
)

// TransferHandler serves bulk import and full export.
type TransferHandler struct {
	Importer *services.ImportService
	Records  *store.RecordStore
	Schema   *store.SchemaStore
	Log      logger.Logger
}

func NewTransferHandler(importer *services.ImportService, records *store.RecordStore, schema *store.SchemaStore, log logger.Logger) *TransferHandler {
	return &TransferHandler{Importer: importer, Records: records, Schema: schema, Log: log}
}

// ImportCSV is POST /import. Accepts a multipart "file" upload or a raw CSV
// body.
func (h *TransferHandler) ImportCSV(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open upload: " + err.Error()})
			return
		}
		defer f.Close()
		reader = f
	}

	result, err := h.Importer.ImportCSV(c.Request.Context(), reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export is GET /export: both collections, serialized verbatim.
func (h *TransferHandler) Export(c *gin.Context) {
	records, err := h.Records.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load records: " + err.Error()})
		return
	}
	fields, err := h.Schema.Fields(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load schema: " + err.Error()})
		return
	}

	if records == nil {
		records = []models.Record{}
	}
	if fields == nil {
		fields = []models.CustomField{}
	}
	c.JSON(http.StatusOK, dtos.ExportResponse{
		Records: records,
		Schema:  models.Schema{CustomFields: fields},
	})
}
