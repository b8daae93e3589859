package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-service/internal/constants"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
)

type stubChatCompleter struct {
	reply   string
	err     error
	request openai.ChatCompletionRequest
}

func (s *stubChatCompleter) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.request = request
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: s.reply}},
		},
	}, nil
}

func TestSuggestionService_NotConfigured(t *testing.T) {
	svc := NewSuggestionService("")
	assert.False(t, svc.Configured())

	_, err := svc.SuggestTasks(context.Background(), "buy milk")
	require.ErrorIs(t, err, ErrSuggestionsNotConfigured)
	assert.Equal(t, apierrors.KindUnavailable, apierrors.KindOf(err))
}

func TestSuggestionService_SuggestTasks(t *testing.T) {
	stub := &stubChatCompleter{reply: `[
		{"title": "Buy milk", "description": "2 liters", "priority": "low", "deadline": "2030-01-11T09:00:00Z"},
		{"title": "Call mom", "description": "", "priority": "HIGH", "deadline": null}
	]`}
	svc := NewSuggestionServiceWithClient(stub, func() time.Time { return fixedNow })

	suggestions, err := svc.SuggestTasks(context.Background(), "buy milk tomorrow and call mom")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "Buy milk", suggestions[0].Title)
	assert.Equal(t, models.TaskPriorityLow, suggestions[0].Priority)
	require.NotNil(t, suggestions[0].Deadline)
	assert.True(t, suggestions[0].Deadline.Equal(time.Date(2030, time.January, 11, 9, 0, 0, 0, time.UTC)))

	assert.Equal(t, models.TaskPriorityHigh, suggestions[1].Priority)
	assert.Nil(t, suggestions[1].Deadline)

	require.Len(t, stub.request.Messages, 1)
	assert.Contains(t, stub.request.Messages[0].Content, "buy milk tomorrow and call mom")
	assert.Contains(t, stub.request.Messages[0].Content, fixedNow.Format(time.RFC3339))
}

func TestSuggestionService_ClientFailureIsUnavailable(t *testing.T) {
	svc := NewSuggestionServiceWithClient(&stubChatCompleter{err: assert.AnError}, nil)

	_, err := svc.SuggestTasks(context.Background(), "anything")
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, apierrors.KindUnavailable, apierrors.KindOf(err))
}

func TestSuggestionService_BlankText(t *testing.T) {
	svc := NewSuggestionServiceWithClient(&stubChatCompleter{}, nil)

	_, err := svc.SuggestTasks(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrSuggestionTextRequired)
}

func TestParseSuggestions(t *testing.T) {
	t.Run("drops untitled drafts and normalizes fields", func(t *testing.T) {
		content := "```json\n" + `[
			{"title": "  ", "priority": "HIGH"},
			{"title": "Past", "priority": "urgent", "deadline": "2020-01-01T00:00:00Z"}
		]` + "\n```"

		suggestions, err := parseSuggestions(content, fixedNow)
		require.NoError(t, err)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "Past", suggestions[0].Title)
		assert.Equal(t, models.TaskPriorityMedium, suggestions[0].Priority)
		assert.Nil(t, suggestions[0].Deadline)
	})

	t.Run("empty array", func(t *testing.T) {
		suggestions, err := parseSuggestions("[]", fixedNow)
		require.NoError(t, err)
		assert.Empty(t, suggestions)
	})

	t.Run("unreadable reply", func(t *testing.T) {
		_, err := parseSuggestions("Sure! Here are your tasks.", fixedNow)
		require.Error(t, err)
		assert.Equal(t, apierrors.KindUnavailable, apierrors.KindOf(err))
	})

	t.Run("caps the number of drafts", func(t *testing.T) {
		drafts := make([]string, constants.MaxSuggestedTasks+5)
		for i := range drafts {
			drafts[i] = fmt.Sprintf(`{"title": "task %d", "priority": "LOW"}`, i)
		}

		suggestions, err := parseSuggestions("["+strings.Join(drafts, ",")+"]", fixedNow)
		require.NoError(t, err)
		assert.Len(t, suggestions, constants.MaxSuggestedTasks)
	})
}
