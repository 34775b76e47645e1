package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// OpenDB returns a bun handle for the given Postgres DSN.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store implements app.QuizStore and app.SubmissionStore on top of bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

type summaryRow struct {
	ID            int64  `bun:"id"`
	Title         string `bun:"title"`
	QuestionCount int    `bun:"question_count"`
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var rows []summaryRow
	err := s.db.NewSelect().
		Model((*quizModel)(nil)).
		ColumnExpr("qz.id, qz.title").
		ColumnExpr("(SELECT count(*) FROM questions AS qs WHERE qs.quiz_id = qz.id) AS question_count").
		OrderExpr("qz.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.QuizSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuizSummary{ID: r.ID, Title: r.Title, QuestionCount: r.QuestionCount})
	}
	return out, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	m := &quizModel{Title: quiz.Title}
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	quiz.ID = m.ID
	return nil
}

func (s *Store) DeleteQuiz(ctx context.Context, quizID int64) error {
	res, err := s.db.NewDelete().Model((*quizModel)(nil)).Where("id = ?", quizID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return expectRow(res, domain.ErrQuizNotFound)
}

func (s *Store) GetQuestion(ctx context.Context, questionID int64) (domain.Question, error) {
	m := new(questionModel)
	err := s.db.NewSelect().
		Model(m).
		Relation("Choices", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ch.id ASC")
		}).
		Where("qs.id = ?", questionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) CreateQuestion(ctx context.Context, question *domain.Question) error {
	exists, err := s.db.NewSelect().Model((*quizModel)(nil)).Where("id = ?", question.QuizID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check quiz: %w", err)
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	m := &questionModel{QuizID: question.QuizID, Text: question.Text, QType: string(question.Type), Order: question.Order}
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	question.ID = m.ID
	return nil
}

func (s *Store) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	m := &questionModel{ID: question.ID, Text: question.Text, QType: string(question.Type), Order: question.Order}
	res, err := s.db.NewUpdate().Model(m).Column("text", "qtype", "order").WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return expectRow(res, domain.ErrQuestionNotFound)
}

func (s *Store) DeleteQuestion(ctx context.Context, questionID int64) error {
	res, err := s.db.NewDelete().Model((*questionModel)(nil)).Where("id = ?", questionID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return expectRow(res, domain.ErrQuestionNotFound)
}

func (s *Store) GetChoice(ctx context.Context, choiceID int64) (domain.Choice, error) {
	m := new(choiceModel)
	err := s.db.NewSelect().Model(m).Where("id = ?", choiceID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Choice{}, domain.ErrChoiceNotFound
	}
	if err != nil {
		return domain.Choice{}, fmt.Errorf("get choice: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) CreateChoice(ctx context.Context, choice *domain.Choice) error {
	exists, err := s.db.NewSelect().Model((*questionModel)(nil)).Where("id = ?", choice.QuestionID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check question: %w", err)
	}
	if !exists {
		return domain.ErrQuestionNotFound
	}
	m := &choiceModel{QuestionID: choice.QuestionID, Text: choice.Text, IsCorrect: choice.IsCorrect}
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert choice: %w", err)
	}
	choice.ID = m.ID
	return nil
}

func (s *Store) UpdateChoice(ctx context.Context, choice *domain.Choice) error {
	m := &choiceModel{ID: choice.ID, Text: choice.Text, IsCorrect: choice.IsCorrect}
	res, err := s.db.NewUpdate().Model(m).Column("text", "is_correct").WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update choice: %w", err)
	}
	return expectRow(res, domain.ErrChoiceNotFound)
}

// DeleteChoice relies on the answers foreign key to clear selections.
func (s *Store) DeleteChoice(ctx context.Context, choiceID int64) error {
	res, err := s.db.NewDelete().Model((*choiceModel)(nil)).Where("id = ?", choiceID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete choice: %w", err)
	}
	return expectRow(res, domain.ErrChoiceNotFound)
}

// WithinTx runs fn in a database transaction; any error rolls back the whole attempt.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx app.SubmissionTx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &submissionTx{tx: tx})
	})
}

type submissionTx struct {
	tx bun.Tx
}

func (t *submissionTx) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	createdAt := submission.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	m := &submissionModel{QuizID: submission.QuizID, CreatedAt: createdAt}
	if _, err := t.tx.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	submission.ID = m.ID
	submission.CreatedAt = createdAt
	return nil
}

func (t *submissionTx) CreateAnswer(ctx context.Context, answer *domain.Answer) error {
	m := &answerModel{
		SubmissionID:     answer.SubmissionID,
		QuestionID:       answer.QuestionID,
		SelectedChoiceID: answer.SelectedChoiceID,
		TextAnswer:       answer.TextAnswer,
	}
	if _, err := t.tx.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	answer.ID = m.ID
	return nil
}

func (t *submissionTx) SetScore(ctx context.Context, submissionID int64, score *float64) error {
	_, err := t.tx.NewUpdate().
		Model((*submissionModel)(nil)).
		Set("score = ?", score).
		Where("id = ?", submissionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// QueryLogger logs every statement at debug level.
type QueryLogger struct{}

func (QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	ev := log.Debug()
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		ev = log.Warn().Err(event.Err)
	}
	ev.Str("operation", event.Operation()).
		Dur("duration", time.Since(event.StartTime)).
		Str("query", event.Query).
		Msg("sql")
}
