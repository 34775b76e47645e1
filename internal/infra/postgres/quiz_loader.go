package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// QuizLoader reads quiz aggregates from Postgres with a single join.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

const loadQuestionsSQL = `
SELECT q.id, q.text, q.qtype, q."order", c.id, c.text, c.is_correct
FROM questions q
LEFT JOIN choices c ON c.question_id = q.id
WHERE q.quiz_id = $1
ORDER BY q."order", q.id, c.id`

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, `SELECT id, title FROM quizzes WHERE id=$1`, quizID).Scan(&quiz.ID, &quiz.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, loadQuestionsSQL, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q          domain.Question
			qtype      string
			choiceID   *int64
			choiceText *string
			isCorrect  *bool
		)
		if err := rows.Scan(&q.ID, &q.Text, &qtype, &q.Order, &choiceID, &choiceText, &isCorrect); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.QuizID = quiz.ID
		q.Type = domain.QuestionType(qtype)

		// rows arrive grouped by question
		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != q.ID {
			quiz.Questions = append(quiz.Questions, q)
			n++
		}
		if choiceID != nil {
			quiz.Questions[n-1].Choices = append(quiz.Questions[n-1].Choices, domain.Choice{
				ID:         *choiceID,
				QuestionID: q.ID,
				Text:       *choiceText,
				IsCorrect:  *isCorrect,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
