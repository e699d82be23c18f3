package models

import (
	"strings"
	"time"
)

// QAPair is one stored question/answer record of the answer corpus
type QAPair struct {
	Question         string `json:"question"`
	Answer           string `json:"answer"`
	AdditionalAnswer string `json:"additional_answer,omitempty"`
	Category         string `json:"category,omitempty"`
}

// Valid reports whether the pair can take part in matching.
func (p QAPair) Valid() bool {
	return strings.TrimSpace(p.Question) != "" && strings.TrimSpace(p.Answer) != ""
}

// DateLayout is how meal dates are stored.
const DateLayout = "2006-01-02"

// Lunch is the meal type served by the school.
const Lunch = "중식"

// Meal is one row of the school meal table
type Meal struct {
	Date     string `json:"date"` // DateLayout
	MealType string `json:"meal_type"`
	Menu     string `json:"menu"`
	ImageURL string `json:"image_url,omitempty"`
}

// Turn is one exchange kept in a user's conversation window
type Turn struct {
	User string    `json:"user"`
	Bot  string    `json:"bot"`
	At   time.Time `json:"at"`
}

// Chat roles understood by the generative assistant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a role-tagged message sent to the generative assistant
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Suggestion is a follow-up prompt offered to the user with a reply
type Suggestion struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Reply is the complete answer to one user message
type Reply struct {
	Text        string       `json:"text"`
	Intent      string       `json:"intent"`
	Suggestions []Suggestion `json:"suggestions"`
}
