package domain

import (
	"sort"
	"time"
)

// QuestionType selects how a question is answered and whether it can be auto-scored.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "tf"
	QuestionText      QuestionType = "text"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionTrueFalse, QuestionText:
		return true
	}
	return false
}

// Answerable reports whether questions of this type have a canonical correct choice.
func (t QuestionType) Answerable() bool {
	return t == QuestionMCQ || t == QuestionTrueFalse
}

// Choice is one selectable option of a question.
type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"-"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

// Question is a single prompt within a quiz.
type Question struct {
	ID      int64        `json:"id"`
	QuizID  int64        `json:"-"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"qtype"`
	Order   int          `json:"order"`
	Choices []Choice     `json:"choices"`
}

// Quiz is the aggregate root for questions and choices.
type Quiz struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Submission is one scored attempt. Score stays nil until every answer is recorded,
// and stays nil for good when the attempt had no answerable questions.
type Submission struct {
	ID        int64
	QuizID    int64
	CreatedAt time.Time
	Score     *float64
}

// Answer is one recorded response within a submission.
type Answer struct {
	ID               int64
	SubmissionID     int64
	QuestionID       int64
	SelectedChoiceID *int64
	TextAnswer       string
}

// AnswerEntry is a raw answer as supplied by the caller.
type AnswerEntry struct {
	QuestionID int64
	ChoiceID   *int64
	Text       *string
}

// QuestionResult is the per-entry outcome returned to the caller.
type QuestionResult struct {
	QuestionID    int64        `json:"question_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer *string      `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
}

// SubmissionResult summarizes a scored submission. Results follow input order.
type SubmissionResult struct {
	SubmissionID int64            `json:"-"`
	Score        *float64         `json:"score"`
	Correct      int              `json:"correct"`
	Total        int              `json:"total"`
	Results      []QuestionResult `json:"results"`
}

// Question returns the question with the given id if it belongs to the quiz.
func (q *Quiz) Question(id int64) (*Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], true
		}
	}
	return nil, false
}

// Choice returns the choice with the given id if it belongs to the question.
func (q *Question) Choice(id int64) (*Choice, bool) {
	for i := range q.Choices {
		if q.Choices[i].ID == id {
			return &q.Choices[i], true
		}
	}
	return nil, false
}

// CorrectChoice returns the canonical correct choice: the flagged choice with the lowest id.
func (q *Question) CorrectChoice() (*Choice, bool) {
	var best *Choice
	for i := range q.Choices {
		c := &q.Choices[i]
		if !c.IsCorrect {
			continue
		}
		if best == nil || c.ID < best.ID {
			best = c
		}
	}
	return best, best != nil
}

// SortQuestions orders questions by display order then id, and choices by id.
func (q *Quiz) SortQuestions() {
	sort.SliceStable(q.Questions, func(i, j int) bool {
		a, b := q.Questions[i], q.Questions[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	for i := range q.Questions {
		choices := q.Questions[i].Choices
		sort.SliceStable(choices, func(a, b int) bool { return choices[a].ID < choices[b].ID })
	}
}
