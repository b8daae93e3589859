package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-service/internal/constants"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
)

var (
	ErrSuggestionsNotConfigured = apierrors.New(apierrors.KindUnavailable, "task suggestions are not configured")
	ErrSuggestionTextRequired   = apierrors.New(apierrors.KindValidation, "text can't be blank")
	ErrNoSuggestionReply        = apierrors.New(apierrors.KindUnavailable, "task suggestion service returned no reply")
)

// ChatCompleter is the part of the OpenAI client the suggestion service uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SuggestionService drafts tasks from free text with an OpenAI chat model.
// Nothing it returns is persisted.
type SuggestionService struct {
	client ChatCompleter
	now    func() time.Time
}

// SuggestedTask is a draft task. Deadline is nil when none was stated or it is not in the future.
type SuggestedTask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    *time.Time          `json:"deadline"`
}

// NewSuggestionService returns a service backed by the OpenAI API.
// An empty key yields a service that reports ErrSuggestionsNotConfigured.
func NewSuggestionService(apiKey string) *SuggestionService {
	if apiKey == "" {
		return &SuggestionService{now: time.Now}
	}
	return NewSuggestionServiceWithClient(openai.NewClient(apiKey), time.Now)
}

// NewSuggestionServiceWithClient builds the service on any chat completion client.
func NewSuggestionServiceWithClient(client ChatCompleter, now func() time.Time) *SuggestionService {
	if now == nil {
		now = time.Now
	}
	return &SuggestionService{client: client, now: now}
}

// Configured reports whether a model client is available.
func (s *SuggestionService) Configured() bool {
	return s != nil && s.client != nil
}

// SuggestTasks extracts draft tasks from text
func (s *SuggestionService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	if !s.Configured() {
		return nil, ErrSuggestionsNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestionTextRequired
	}

	now := s.now()
	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete tasks from the text below.

Current time: %s

Text:
%s

Reply with a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "task details",
    "priority": "LOW, MEDIUM or HIGH",
    "deadline": "RFC 3339 timestamp such as 2025-10-28T23:59:59Z, or null when no deadline is stated"
  }
]

Rules:
- Reply with [] when the text contains no tasks
- Resolve relative dates ("tomorrow", "next week") against the current time
- Reply with JSON only, without any explanation`, now.Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.KindUnavailable, "task suggestion service failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoSuggestionReply
	}

	return parseSuggestions(resp.Choices[0].Message.Content, now)
}

// parseSuggestions decodes the model reply and drops drafts that cannot become tasks.
// Untitled drafts are skipped, unknown priorities become MEDIUM and past deadlines are cleared.
func parseSuggestions(content string, now time.Time) ([]SuggestedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var drafts []SuggestedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &drafts); err != nil {
		return nil, apierrors.Wrap(apierrors.KindUnavailable, "task suggestion service returned an unreadable reply", err)
	}

	suggestions := make([]SuggestedTask, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}

		draft.Priority = models.TaskPriority(strings.ToUpper(string(draft.Priority)))
		if !draft.Priority.Valid() {
			draft.Priority = models.TaskPriorityMedium
		}
		if draft.Deadline != nil && !draft.Deadline.After(now) {
			draft.Deadline = nil
		}

		suggestions = append(suggestions, draft)
		if len(suggestions) == constants.MaxSuggestedTasks {
			break
		}
	}

	return suggestions, nil
}
