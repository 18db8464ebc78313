package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck/internal/dtos"
	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/store"
)

// JobHandler serves the direct-manipulation record endpoints.
type JobHandler struct {
	Records *store.RecordStore
	Log     logger.Logger
}

func NewJobHandler(records *store.RecordStore, log logger.Logger) *JobHandler {
	return &JobHandler{Records: records, Log: log}
}

// HealthCheck is the GET /health endpoint.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListJobs is GET /jobs.
func (h *JobHandler) ListJobs(c *gin.Context) {
	records, err := h.Records.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	c.JSON(http.StatusOK, records)
}

// GetJob is GET /jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	rec, found, err := h.Records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CreateJob is POST /jobs.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	input := store.RecordInput{
		Company:     req.Company,
		Role:        req.Role,
		AppliedDate: req.AppliedDate,
		Tags:        req.Tags,
		Notes:       req.Notes,
		Custom:      req.Custom,
	}
	if req.Status != "" {
		status, ok := models.ParseStatus(req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + req.Status})
			return
		}
		input.Status = status
	}

	id, err := h.Records.Add(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateJob is PATCH /jobs/:id. Unknown ids are a silent no-op by store
// contract, so this always answers 200 on a well-formed request.
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req dtos.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	patch := store.RecordPatch{
		Company:     req.Company,
		Role:        req.Role,
		AppliedDate: req.AppliedDate,
		Tags:        req.Tags,
		Notes:       req.Notes,
		Custom:      req.Custom,
	}
	if req.Status != nil {
		status, ok := models.ParseStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + *req.Status})
			return
		}
		patch.Status = &status
	}

	if err := h.Records.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SetStatus is PUT /jobs/:id/status.
func (h *JobHandler) SetStatus(c *gin.Context) {
	var req dtos.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	status, ok := models.ParseStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + req.Status})
		return
	}

	if err := h.Records.SetStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set status: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddTag is POST /jobs/:id/tags.
func (h *JobHandler) AddTag(c *gin.Context) {
	var req dtos.AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	if err := h.Records.AddTag(c.Request.Context(), c.Param("id"), req.Tag); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add tag: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AddNote is POST /jobs/:id/notes — appends to the note history.
func (h *JobHandler) AddNote(c *gin.Context) {
	var req dtos.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	if err := h.Records.AddNote(c.Request.Context(), c.Param("id"), req.Note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add note: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SetNote is PUT /jobs/:id/notes — replaces the history; null clears it.
func (h *JobHandler) SetNote(c *gin.Context) {
	var req dtos.SetNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	if err := h.Records.SetNote(c.Request.Context(), c.Param("id"), req.Note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set note: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteJob is DELETE /jobs/:id. Idempotent: deleting an unknown id still
// answers 200.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.Records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
