package services

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

// AssistantQuiz is a single multiple-choice question in an assistant reply.
type AssistantQuiz struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// AssistantFlashcard is a front/back study card in an assistant reply.
type AssistantFlashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// AssistantResponse is the study assistant's reply to one message.
type AssistantResponse struct {
	Content   string              `json:"content"`
	Type      string              `json:"type"` // "text", "quiz" or "flashcard"
	Quiz      *AssistantQuiz      `json:"quiz,omitempty"`
	Flashcard *AssistantFlashcard `json:"flashcard,omitempty"`
}

// AssistantService is the canned study assistant: it matches keywords in the
// message and answers from a fixed pool of tips, quotes, topics, quizzes and
// flashcards. No external model is involved.
type AssistantService interface {
	Reply(message string) AssistantResponse
}

var studyTopics = []string{
	"Mathematics", "Physics", "Chemistry", "Biology",
	"Computer Science", "History", "Literature", "Languages",
}

var studyTips = []string{
	"Create a study schedule and stick to it",
	"Take regular breaks to maintain focus",
	"Use active recall techniques",
	"Practice with past exams",
	"Join study groups for collaborative learning",
	"Stay hydrated and get enough sleep",
	"Use mind maps for complex topics",
	"Teach others to reinforce your understanding",
	"Use the Pomodoro Technique (25 minutes study, 5 minutes break)",
	"Create flashcards for key concepts",
	"Summarize information in your own words",
	"Use spaced repetition for better retention",
}

var motivationalQuotes = []string{
	"The only way to do great work is to love what you do.",
	"Success is not final, failure is not fatal: it is the courage to continue that counts.",
	"The future belongs to those who believe in the beauty of their dreams.",
	"Education is the most powerful weapon which you can use to change the world.",
	"The more that you read, the more things you will know. The more that you learn, the more places you'll go.",
	"Learning is not attained by chance, it must be sought for with ardor and attended to with diligence.",
	"The beautiful thing about learning is that no one can take it away from you.",
	"Education is not preparation for life; education is life itself.",
}

var quickQuizzes = []AssistantQuiz{
	{
		Question:      "What is the capital of France?",
		Options:       []string{"London", "Berlin", "Paris", "Madrid"},
		CorrectAnswer: 2,
	},
	{
		Question:      "Which planet is known as the Red Planet?",
		Options:       []string{"Venus", "Mars", "Jupiter", "Saturn"},
		CorrectAnswer: 1,
	},
	{
		Question:      "What is the largest mammal in the world?",
		Options:       []string{"African Elephant", "Blue Whale", "Giraffe", "Polar Bear"},
		CorrectAnswer: 1,
	},
}

var studyFlashcards = []AssistantFlashcard{
	{
		Front: "What is photosynthesis?",
		Back:  "The process by which plants convert light energy into chemical energy that can be used to fuel their activities.",
	},
	{
		Front: "What is the Pythagorean theorem?",
		Back:  "In a right triangle, the square of the length of the hypotenuse is equal to the sum of the squares of the other two sides.",
	},
	{
		Front: "What is the capital of Japan?",
		Back:  "Tokyo",
	},
}

type assistantService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewAssistantService creates an AssistantService seeded from src.
func NewAssistantService(src rand.Source) AssistantService {
	return &assistantService{rng: rand.New(src)}
}

func (s *assistantService) Reply(message string) AssistantResponse {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "study tips"):
		tips := s.sample(studyTips, 3)
		return AssistantResponse{
			Content: "Here are some helpful study tips:\n\n" + strings.Join(tips, "\n\n"),
			Type:    "text",
		}

	case strings.Contains(lower, "motivation"):
		quote := motivationalQuotes[s.intn(len(motivationalQuotes))]
		return AssistantResponse{
			Content: fmt.Sprintf("Here's some motivation for you:\n\n%q", quote),
			Type:    "text",
		}

	case strings.Contains(lower, "topics"):
		topics := s.sample(studyTopics, 4)
		return AssistantResponse{
			Content: "Here are some interesting study topics you might want to explore: " + strings.Join(topics, ", "),
			Type:    "text",
		}

	case strings.Contains(lower, "quiz"):
		quiz := quickQuizzes[s.intn(len(quickQuizzes))]
		return AssistantResponse{
			Content: "Here's a quick quiz to test your knowledge:",
			Type:    "quiz",
			Quiz:    &quiz,
		}

	case strings.Contains(lower, "flashcard"):
		card := studyFlashcards[s.intn(len(studyFlashcards))]
		return AssistantResponse{
			Content:   "Here's a flashcard to help you learn:",
			Type:      "flashcard",
			Flashcard: &card,
		}

	case strings.Contains(lower, "help"):
		return AssistantResponse{
			Content: "I can help you with:\n\n- Study tips and techniques\n- Motivational quotes\n- Study topics and subjects\n- Quick quizzes\n- Flashcards\n- General study advice\n\nJust ask me about any of these topics!",
			Type:    "text",
		}

	default:
		return AssistantResponse{
			Content: "I'm here to help you with your studies! You can ask me about study tips, motivation, quizzes, flashcards, or specific topics you're interested in.",
			Type:    "text",
		}
	}
}

func (s *assistantService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// sample returns n distinct items from pool in random order.
func (s *assistantService) sample(pool []string, n int) []string {
	s.mu.Lock()
	perm := s.rng.Perm(len(pool))
	s.mu.Unlock()

	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, pool[i])
	}
	return out
}
