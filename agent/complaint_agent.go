package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/shop-assistant/complaint"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/prompts"
	"go.uber.org/zap"
)

const ComplaintApology = "Xin lỗi bạn, mình chưa ghi nhận được khiếu nại lúc này. Bạn có thể mô tả lại vấn đề và để lại email hoặc số điện thoại giúp mình nhé."

type ComplaintResult struct {
	ResponseText string
	IsComplete   bool
	// Complaint is the saved complaint, nil while intake is still collecting data.
	Complaint *db.ComplaintModel
	Created   bool
	Fallback  bool
}

// ComplaintAgent runs one intake turn. A complaint row is only created once the
// model reports the intake complete; until then partial data lives in the session draft.
type ComplaintAgent struct {
	client   llm.LLMClient
	store    complaint.Store
	timeout  time.Duration
	shopName string
	now      func() time.Time
}

func NewComplaintAgent(client llm.LLMClient, store complaint.Store, timeout time.Duration, shopName string) *ComplaintAgent {
	return &ComplaintAgent{
		client:   client,
		store:    store,
		timeout:  timeout,
		shopName: shopName,
		now:      time.Now,
	}
}

type complaintPayload struct {
	ResponseText  *string `json:"responseText"`
	IsComplete    *bool   `json:"isComplete"`
	ComplaintData *struct {
		DetailedDescription *string `json:"detailedDescription"`
		CustomerContact     *struct {
			Email *string `json:"email"`
			Phone *string `json:"phone"`
		} `json:"customerContact"`
		Priority *string  `json:"priority"`
		Tags     []string `json:"tags"`
	} `json:"complaintData"`
}

func (a *ComplaintAgent) HandleTurn(ctx context.Context, sessionID string, history []db.TurnModel, message string) ComplaintResult {
	activeTask := async.Go(func() (*db.ComplaintModel, error) {
		return a.store.FindActiveForSession(ctx, sessionID)
	})
	draftTask := async.Go(func() (*db.ComplaintDraftModel, error) {
		return a.store.LoadDraft(ctx, sessionID)
	})

	active, err := async.Await(activeTask)
	if err != nil {
		logger.Error("Failed to load active complaint", zap.String("sessionId", sessionID), zap.Error(err))
		return apology()
	}
	draft, err := async.Await(draftTask)
	if err != nil {
		// the draft only enriches the prompt; carry on without it
		logger.Error("Failed to load complaint draft", zap.String("sessionId", sessionID), zap.Error(err))
		draft = nil
	}

	systemPrompt, userPrompt, err := prompts.RenderComplaintPrompt(a.shopName, knownComplaint(active, draft), historyMessages(history), message)
	if err != nil {
		logger.Error("Failed to render complaint prompt", zap.Error(err))
		return apology()
	}

	callCtx, cancel := llm.WithTimeout(ctx, a.timeout)
	defer cancel()

	response, err := llm.Complete(callCtx, a.client,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithJSONResponse(),
		llm.WithTemperature(0.2),
		llm.WithMaxTokens(1024),
	)
	if err != nil {
		logger.Error("Complaint extraction failed", zap.String("sessionId", sessionID), zap.Error(err))
		return apology()
	}

	responseText, isComplete, extraction, err := parseComplaint(response)
	if err != nil {
		logger.Error("Unusable complaint extraction", zap.String("sessionId", sessionID), zap.String("response", response), zap.Error(err))
		return apology()
	}

	now := a.now().UnixMilli()
	result := ComplaintResult{ResponseText: responseText, IsComplete: isComplete}

	switch {
	case active != nil:
		complaint.ApplyToComplaint(active, draft, extraction, now)
		if err := a.advance(active, isComplete, now); err != nil {
			logger.Error("Complaint status transition rejected", zap.String("complaintId", active.ComplaintID), zap.Error(err))
		}
		if err := a.store.Save(ctx, active); err != nil {
			logger.Error("Failed to save complaint", zap.String("complaintId", active.ComplaintID), zap.Error(err))
			return apology()
		}
		result.Complaint = active

	case isComplete:
		created := db.NewComplaintModel(sessionID, now)
		complaint.ApplyToComplaint(created, draft, extraction, now)
		if err := a.advance(created, isComplete, now); err != nil {
			logger.Error("Complaint status transition rejected", zap.String("complaintId", created.ComplaintID), zap.Error(err))
		}
		if err := a.store.Save(ctx, created); err != nil {
			logger.Error("Failed to save complaint", zap.String("sessionId", sessionID), zap.Error(err))
			return apology()
		}
		logger.Info("Complaint created", zap.String("sessionId", sessionID), zap.String("complaintId", created.ComplaintID))
		result.Complaint = created
		result.Created = true

	default:
		if draft == nil {
			draft = &db.ComplaintDraftModel{SessionID: sessionID, Tags: []string{}}
		}
		complaint.ApplyToDraft(draft, extraction, now)
		if err := a.store.SaveDraft(ctx, draft); err != nil {
			logger.Error("Failed to save complaint draft", zap.String("sessionId", sessionID), zap.Error(err))
		}
		return result
	}

	if draft != nil {
		if err := a.store.ClearDraft(ctx, sessionID); err != nil {
			logger.Error("Failed to clear complaint draft", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}
	return result
}

// advance moves an open complaint to in_progress once intake is complete and a contact is known.
func (a *ComplaintAgent) advance(c *db.ComplaintModel, isComplete bool, now int64) error {
	if !isComplete || c.Status != db.StatusOpen || !c.CustomerContact.HasAny() {
		return nil
	}
	return complaint.Transition(c, db.StatusInProgress, now)
}

func parseComplaint(response string) (string, bool, complaint.Extraction, error) {
	var extraction complaint.Extraction

	jsonStr, err := llm.ExtractJSON(response)
	if err != nil {
		return "", false, extraction, err
	}

	var payload complaintPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return "", false, extraction, err
	}

	if payload.ResponseText == nil || strings.TrimSpace(*payload.ResponseText) == "" {
		return "", false, extraction, errMissingField("responseText")
	}
	if payload.IsComplete == nil {
		return "", false, extraction, errMissingField("isComplete")
	}

	if data := payload.ComplaintData; data != nil {
		if data.DetailedDescription != nil {
			extraction.Description = strings.TrimSpace(*data.DetailedDescription)
		}
		if contact := data.CustomerContact; contact != nil {
			if contact.Email != nil && strings.TrimSpace(*contact.Email) != "" {
				if email, ok := complaint.NormalizeEmail(*contact.Email); ok {
					extraction.Contact.Email = email
				} else {
					logger.Info("Dropping invalid complaint email", zap.String("email", *contact.Email))
				}
			}
			if contact.Phone != nil && strings.TrimSpace(*contact.Phone) != "" {
				if phone, ok := complaint.NormalizePhone(*contact.Phone); ok {
					extraction.Contact.Phone = phone
				} else {
					logger.Info("Dropping invalid complaint phone", zap.String("phone", *contact.Phone))
				}
			}
		}
		if data.Priority != nil && strings.TrimSpace(*data.Priority) != "" {
			extraction.Priority = db.ParsePriority(*data.Priority)
		}
		extraction.Tags = data.Tags
	}

	return strings.TrimSpace(*payload.ResponseText), *payload.IsComplete, extraction, nil
}

func knownComplaint(active *db.ComplaintModel, draft *db.ComplaintDraftModel) *prompts.KnownComplaint {
	known := &prompts.KnownComplaint{}
	if active != nil {
		known.Description = active.Description
		known.Email = active.CustomerContact.Email
		known.Phone = active.CustomerContact.Phone
		known.Tags = active.Tags
	}
	if draft != nil {
		if draft.Description != "" {
			known.Description = draft.Description
		}
		if draft.CustomerContact.Email != "" {
			known.Email = draft.CustomerContact.Email
		}
		if draft.CustomerContact.Phone != "" {
			known.Phone = draft.CustomerContact.Phone
		}
		known.Tags = complaint.MergeTags(known.Tags, draft.Tags)
	}
	return known
}

func apology() ComplaintResult {
	return ComplaintResult{ResponseText: ComplaintApology, Fallback: true}
}
