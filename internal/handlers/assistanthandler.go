package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck/internal/actions"
	"github.com/jobdeck/jobdeck/internal/dtos"
	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/services"
	"github.com/jobdeck/jobdeck/internal/store"
)

// AssistantHandler wires the full pipeline: instruction -> LLM ->
// normalizer -> applicator -> per-command results.
type AssistantHandler struct {
	Assistant  *services.AssistantService
	Applicator *actions.Applicator
	Records    *store.RecordStore
	Schema     *store.SchemaStore
	Log        logger.Logger
}

func NewAssistantHandler(
	assistant *services.AssistantService,
	applicator *actions.Applicator,
	records *store.RecordStore,
	schema *store.SchemaStore,
	log logger.Logger,
) *AssistantHandler {
	return &AssistantHandler{
		Assistant:  assistant,
		Applicator: applicator,
		Records:    records,
		Schema:     schema,
		Log:        log,
	}
}

// Handle is POST /assistant.
func (h *AssistantHandler) Handle(c *gin.Context) {
	if h.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured (missing API key)"})
		return
	}

	var req dtos.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	ctx := c.Request.Context()

	// 1. Snapshot current state for the model and for field resolution.
	records, err := h.Records.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load records: " + err.Error()})
		return
	}
	fields, err := h.Schema.Fields(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load schema: " + err.Error()})
		return
	}

	// 2. Ask the model for a plan. A transport or parse failure here is
	// terminal: nothing is normalized or applied.
	payload, err := h.Assistant.Plan(ctx, req.Instruction, records, fields)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant request failed: " + err.Error()})
		return
	}

	// 3. Normalize. An unusable payload just means zero actions.
	batch := actions.Normalize(payload)

	// 4. Apply, one command at a time, never aborting the batch.
	results := h.Applicator.Apply(ctx, batch.Commands, fields)

	applied, failed := 0, 0
	for _, r := range results {
		if r.OK {
			applied++
		} else {
			failed++
		}
	}

	summary := batch.Summary
	if summary == "" {
		summary = fmt.Sprintf("Applied %d of %d actions", applied, len(results))
	}

	h.Log.Info("assistant batch applied",
		logger.Int("applied", applied),
		logger.Int("failed", failed))

	c.JSON(http.StatusOK, dtos.AssistantResponse{
		Summary: summary,
		Applied: applied,
		Failed:  failed,
		Results: results,
	})
}
