package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
)

// AssistantService turns a natural-language instruction into the raw action
// payload the normalizer consumes. It is the only component that talks to
// the text-generation endpoint; any failure here is terminal for the whole
// request — nothing gets normalized or applied on a transport error.
type AssistantService struct {
	client llms.Model
	log    logger.Logger
}

func NewAssistantService(ctx context.Context, apiKey, model string, log logger.Logger) (*AssistantService, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &AssistantService{client: llm, log: log}, nil
}

const planPrompt = `You are an assistant managing a personal job-application tracker.
Given the user's instruction and the current state, respond with the mutations to perform.

### OUTPUT FORMAT:
Respond with valid JSON only. Do not wrap the output in markdown code blocks.
{
    "summary": "One sentence describing what you did",
    "actions": [ ... ]
}

Each action is an object with a "type" field, one of:
- {"type":"add_job","company":"...","role":"...","status":"...","appliedDate":"...","tags":[...],"notes":[...],"custom":{...}}
- {"type":"update_job","id":"...", ...same optional fields as add_job}
- {"type":"set_status","id":"...","status":"..."}
- {"type":"add_tag","id":"...","tag":"..."}
- {"type":"add_note","id":"...","note":"..."}
- {"type":"add_custom_field","name":"...","fieldType":"text|number|date|url"}
- {"type":"delete_job","id":"..."}

### CONSTRAINTS:
- status must be one of: applied, interviewed, offer, accepted, rejected, archived
- Reference existing records by the exact "id" from the state below.
- If the instruction is not actionable, return an empty actions array.

### CURRENT FIELDS:
%s

### CURRENT RECORDS:
%s

### INSTRUCTION:
%s
`

// plannerRecord is the compact record view sent to the model. Timelines and
// note history stay local; the model only needs enough to pick ids.
type plannerRecord struct {
	ID          string        `json:"id"`
	Company     string        `json:"company"`
	Role        string        `json:"role"`
	Status      models.Status `json:"status"`
	AppliedDate string        `json:"appliedDate,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Note        string        `json:"note,omitempty"`
}

// Plan sends the instruction plus a state snapshot and returns the decoded
// payload, untyped. Validation is not this service's job; the normalizer
// treats whatever comes back as untrusted.
func (s *AssistantService) Plan(ctx context.Context, instruction string, records []models.Record, fields []models.CustomField) (any, error) {
	view := make([]plannerRecord, 0, len(records))
	for _, r := range records {
		view = append(view, plannerRecord{
			ID:          r.ID,
			Company:     r.Company,
			Role:        r.Role,
			Status:      r.Status,
			AppliedDate: r.AppliedDate,
			Tags:        r.Tags,
			Note:        r.CurrentNote(),
		})
	}
	recordsJSON, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("encode records snapshot: %w", err)
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode schema snapshot: %w", err)
	}

	prompt := fmt.Sprintf(planPrompt, fieldsJSON, recordsJSON, instruction)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.client, prompt)
	if err != nil {
		s.log.Error("assistant call failed", logger.Error(err))
		return nil, fmt.Errorf("assistant call failed: %w", err)
	}

	var payload any
	if err := json.Unmarshal([]byte(stripFences(resp)), &payload); err != nil {
		s.log.Warn("assistant returned invalid JSON",
			logger.Int("responseLen", len(resp)),
			logger.Error(err))
		return nil, fmt.Errorf("assistant returned invalid JSON: %w", err)
	}
	return payload, nil
}

// stripFences removes a markdown code fence if the model ignored the
// no-fences instruction, which happens often enough to handle.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
