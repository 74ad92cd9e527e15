package services

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAssistant() AssistantService {
	return NewAssistantService(rand.NewSource(1))
}

func TestAssistantStudyTips(t *testing.T) {
	resp := newTestAssistant().Reply("Got any study tips for finals?")
	require.Equal(t, "text", resp.Type)
	require.Contains(t, resp.Content, "study tips")
	// Three tips separated by blank lines.
	require.Len(t, strings.Split(resp.Content, "\n\n"), 4)
}

func TestAssistantQuiz(t *testing.T) {
	resp := newTestAssistant().Reply("give me a QUIZ please")
	require.Equal(t, "quiz", resp.Type)
	require.NotNil(t, resp.Quiz)
	require.GreaterOrEqual(t, len(resp.Quiz.Options), 2)
	require.Less(t, resp.Quiz.CorrectAnswer, len(resp.Quiz.Options))
	require.Nil(t, resp.Flashcard)
}

func TestAssistantFlashcard(t *testing.T) {
	resp := newTestAssistant().Reply("show me a flashcard")
	require.Equal(t, "flashcard", resp.Type)
	require.NotNil(t, resp.Flashcard)
	require.NotEmpty(t, resp.Flashcard.Front)
	require.NotEmpty(t, resp.Flashcard.Back)
}

func TestAssistantDefaultReply(t *testing.T) {
	resp := newTestAssistant().Reply("what's the weather like?")
	require.Equal(t, "text", resp.Type)
	require.Contains(t, resp.Content, "here to help")
}

func TestAssistantKeywordPriority(t *testing.T) {
	// "study tips" wins over "quiz" when both appear, matching the fixed
	// keyword order.
	resp := newTestAssistant().Reply("study tips or a quiz?")
	require.Equal(t, "text", resp.Type)
	require.Contains(t, resp.Content, "study tips")
}
