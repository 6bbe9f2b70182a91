package domain

import "time"

// Question models a single multiple-choice prompt. Answer is the index into
// Options of the correct choice.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// Section is a named group of questions presented consecutively.
type Section struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Catalog is the immutable quiz content tree. Question IDs are unique across
// the whole catalog; answers are keyed by ID, not by position.
type Catalog struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// TotalQuestions sums question counts over all sections.
func (c Catalog) TotalQuestions() int {
	total := 0
	for _, s := range c.Sections {
		total += len(s.Questions)
	}
	return total
}

// AnswerDetail is one per-question row of a result record. Selected is nil
// when the question was never answered.
type AnswerDetail struct {
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Selected   *int     `json:"selected"`
	Correct    int      `json:"correct"`
}

// ResultRecord is the immutable scored report produced once a session ends.
type ResultRecord struct {
	ID               string         `json:"id"`
	Username         string         `json:"username"`
	CompletedAt      time.Time      `json:"completedAt"`
	Total            int            `json:"total"`
	Correct          int            `json:"correct"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Details          []AnswerDetail `json:"details"`
}

// SessionState enumerates the states of a quiz session.
type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateActive          SessionState = "active"
	StateFinished        SessionState = "finished"
)

// QuestionView is the active-session projection of a question. It carries no
// correct index so views can be handed to clients as-is.
type QuestionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Selected *int     `json:"selected"`
}

// SessionView is a read-only snapshot of the session for the presentation
// layer. Question and Result are populated only in the matching state.
type SessionView struct {
	State            SessionState  `json:"state"`
	Username         string        `json:"username,omitempty"`
	CatalogTitle     string        `json:"catalogTitle,omitempty"`
	SectionIndex     int           `json:"sectionIndex"`
	SectionTitle     string        `json:"sectionTitle,omitempty"`
	SectionSize      int           `json:"sectionSize"`
	QuestionIndex    int           `json:"questionIndex"`
	TotalQuestions   int           `json:"totalQuestions"`
	AnsweredCount    int           `json:"answeredCount"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Question         *QuestionView `json:"question,omitempty"`
	Result           *ResultRecord `json:"result,omitempty"`
}
