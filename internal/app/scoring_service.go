package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// QuizRepository loads quiz aggregates (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID int64)
}

// SubmissionStore persists submissions. Everything written through the SubmissionTx
// passed to fn is committed together, or discarded if fn returns an error.
type SubmissionStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx SubmissionTx) error) error
}

// SubmissionTx is the write side available inside a submission unit of work.
type SubmissionTx interface {
	CreateSubmission(ctx context.Context, submission *domain.Submission) error
	CreateAnswer(ctx context.Context, answer *domain.Answer) error
	SetScore(ctx context.Context, submissionID int64, score *float64) error
}

// ScoringService records and scores quiz attempts.
type ScoringService struct {
	quizzes     QuizRepository
	submissions SubmissionStore
	now         func() time.Time
}

func NewScoringService(quizzes QuizRepository, submissions SubmissionStore) *ScoringService {
	return NewScoringServiceWithClock(quizzes, submissions, time.Now)
}

// NewScoringServiceWithClock is used by tests that pin submission timestamps.
func NewScoringServiceWithClock(quizzes QuizRepository, submissions SubmissionStore, now func() time.Time) *ScoringService {
	return &ScoringService{quizzes: quizzes, submissions: submissions, now: now}
}

// Submit records one attempt at a quiz and scores it.
//
// Entries are processed in the order given and results come back in the same order.
// An entry whose question is not part of the quiz aborts the whole attempt and nothing
// is persisted. A choice that does not belong to its question counts as no selection.
func (s *ScoringService) Submit(ctx context.Context, quizID int64, answers []domain.AnswerEntry) (domain.SubmissionResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	var result domain.SubmissionResult
	err = s.submissions.WithinTx(ctx, func(ctx context.Context, tx SubmissionTx) error {
		r, err := s.score(ctx, tx, &quiz, answers)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	log.Info().
		Int64("quiz_id", quizID).
		Int64("submission_id", result.SubmissionID).
		Int("correct", result.Correct).
		Int("total", result.Total).
		Msg("submission scored")
	return result, nil
}

func (s *ScoringService) score(ctx context.Context, tx SubmissionTx, quiz *domain.Quiz, answers []domain.AnswerEntry) (domain.SubmissionResult, error) {
	submission := &domain.Submission{QuizID: quiz.ID, CreatedAt: s.now().UTC()}
	if err := tx.CreateSubmission(ctx, submission); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("create submission: %w", err)
	}

	result := domain.SubmissionResult{
		SubmissionID: submission.ID,
		Results:      make([]domain.QuestionResult, 0, len(answers)),
	}

	for _, entry := range answers {
		question, ok := quiz.Question(entry.QuestionID)
		if !ok {
			return domain.SubmissionResult{}, fmt.Errorf("question %d in quiz %d: %w", entry.QuestionID, quiz.ID, domain.ErrQuestionNotFound)
		}

		var selected *domain.Choice
		if entry.ChoiceID != nil {
			selected, _ = question.Choice(*entry.ChoiceID)
		}
		text := ""
		if entry.Text != nil {
			text = *entry.Text
		}

		answer := &domain.Answer{
			SubmissionID: submission.ID,
			QuestionID:   question.ID,
			TextAnswer:   text,
		}
		if selected != nil {
			id := selected.ID
			answer.SelectedChoiceID = &id
		}
		if err := tx.CreateAnswer(ctx, answer); err != nil {
			return domain.SubmissionResult{}, fmt.Errorf("create answer: %w", err)
		}

		qr := domain.QuestionResult{
			QuestionID:   question.ID,
			QuestionText: question.Text,
			QuestionType: question.Type,
			UserAnswer:   text,
		}
		if selected != nil {
			qr.UserAnswer = selected.Text
		}

		if question.Type.Answerable() {
			result.Total++
			if correct, ok := question.CorrectChoice(); ok {
				correctText := correct.Text
				qr.CorrectAnswer = &correctText
				if selected != nil && selected.IsCorrect {
					result.Correct++
					qr.IsCorrect = true
				}
			}
		}
		result.Results = append(result.Results, qr)
	}

	if result.Total > 0 {
		score := float64(result.Correct) / float64(result.Total) * 100
		result.Score = &score
	}
	if err := tx.SetScore(ctx, submission.ID, result.Score); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("set score: %w", err)
	}
	return result, nil
}
