package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

type quizModel struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Title string `bun:"title,notnull"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID      int64          `bun:"id,pk,autoincrement"`
	QuizID  int64          `bun:"quiz_id,notnull"`
	Text    string         `bun:"text,notnull"`
	QType   string         `bun:"qtype,notnull"`
	Order   int            `bun:"order,notnull"`
	Choices []*choiceModel `bun:"rel:has-many,join:id=question_id"`
}

type choiceModel struct {
	bun.BaseModel `bun:"table:choices,alias:ch"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Text       string `bun:"text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

type submissionModel struct {
	bun.BaseModel `bun:"table:submissions,alias:sb"`

	ID        int64     `bun:"id,pk,autoincrement"`
	QuizID    int64     `bun:"quiz_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	Score     *float64  `bun:"score"`
}

type answerModel struct {
	bun.BaseModel `bun:"table:answers,alias:an"`

	ID               int64  `bun:"id,pk,autoincrement"`
	SubmissionID     int64  `bun:"submission_id,notnull"`
	QuestionID       int64  `bun:"question_id,notnull"`
	SelectedChoiceID *int64 `bun:"selected_choice_id"`
	TextAnswer       string `bun:"text_answer,notnull"`
}

func (m *questionModel) toDomain() domain.Question {
	q := domain.Question{
		ID:     m.ID,
		QuizID: m.QuizID,
		Text:   m.Text,
		Type:   domain.QuestionType(m.QType),
		Order:  m.Order,
	}
	for _, c := range m.Choices {
		q.Choices = append(q.Choices, c.toDomain())
	}
	return q
}

func (m *choiceModel) toDomain() domain.Choice {
	return domain.Choice{ID: m.ID, QuestionID: m.QuestionID, Text: m.Text, IsCorrect: m.IsCorrect}
}
