package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// QuizStore is the authoring side of quiz storage. Deleting a quiz or question removes
// its descendants; deleting a choice clears it from recorded answers.
type QuizStore interface {
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID int64) error

	GetQuestion(ctx context.Context, questionID int64) (domain.Question, error)
	CreateQuestion(ctx context.Context, question *domain.Question) error
	UpdateQuestion(ctx context.Context, question *domain.Question) error
	DeleteQuestion(ctx context.Context, questionID int64) error

	GetChoice(ctx context.Context, choiceID int64) (domain.Choice, error)
	CreateChoice(ctx context.Context, choice *domain.Choice) error
	UpdateChoice(ctx context.Context, choice *domain.Choice) error
	DeleteChoice(ctx context.Context, choiceID int64) error
}

// AuthoringService manages quiz content and serves the read views.
type AuthoringService struct {
	store   QuizStore
	quizzes QuizRepository
}

func NewAuthoringService(store QuizStore, quizzes QuizRepository) *AuthoringService {
	return &AuthoringService{store: store, quizzes: quizzes}
}

// QuestionInput carries the editable fields of a question.
type QuestionInput struct {
	Text  string
	Type  domain.QuestionType
	Order int
}

// ChoiceInput carries the editable fields of a choice.
type ChoiceInput struct {
	Text      string
	IsCorrect bool
}

func (s *AuthoringService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return s.store.ListQuizzes(ctx)
}

// GetQuiz returns the quiz with questions sorted for display.
func (s *AuthoringService) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

func (s *AuthoringService) CreateQuiz(ctx context.Context, title string) (domain.Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Quiz{}, fmt.Errorf("title cannot be empty: %w", domain.ErrInvalidQuiz)
	}
	quiz := domain.Quiz{Title: title}
	if err := s.store.CreateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	log.Info().Int64("quiz_id", quiz.ID).Msg("quiz created")
	return quiz, nil
}

func (s *AuthoringService) DeleteQuiz(ctx context.Context, quizID int64) error {
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.quizzes.Invalidate(ctx, quizID)
	log.Info().Int64("quiz_id", quizID).Msg("quiz deleted")
	return nil
}

func (s *AuthoringService) AddQuestion(ctx context.Context, quizID int64, in QuestionInput) (domain.Question, error) {
	if err := validateQuestion(in); err != nil {
		return domain.Question{}, err
	}
	question := domain.Question{QuizID: quizID, Text: strings.TrimSpace(in.Text), Type: in.Type, Order: in.Order}
	if err := s.store.CreateQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	s.quizzes.Invalidate(ctx, quizID)
	return question, nil
}

// UpdateQuestion edits an existing question. Choice questions must already carry at
// least two choices; new questions are exempt because choices are added afterwards.
func (s *AuthoringService) UpdateQuestion(ctx context.Context, questionID int64, in QuestionInput) (domain.Question, error) {
	if err := validateQuestion(in); err != nil {
		return domain.Question{}, err
	}
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	if in.Type.Answerable() && len(question.Choices) < 2 {
		return domain.Question{}, fmt.Errorf("%s questions require at least 2 answer options, currently has %d: %w",
			in.Type, len(question.Choices), domain.ErrInvalidQuestion)
	}

	question.Text = strings.TrimSpace(in.Text)
	question.Type = in.Type
	question.Order = in.Order
	if err := s.store.UpdateQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	s.quizzes.Invalidate(ctx, question.QuizID)
	return question, nil
}

func (s *AuthoringService) DeleteQuestion(ctx context.Context, questionID int64) error {
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteQuestion(ctx, questionID); err != nil {
		return err
	}
	s.quizzes.Invalidate(ctx, question.QuizID)
	return nil
}

func (s *AuthoringService) AddChoice(ctx context.Context, questionID int64, in ChoiceInput) (domain.Choice, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Choice{}, fmt.Errorf("choice text cannot be empty: %w", domain.ErrInvalidChoice)
	}
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Choice{}, err
	}
	choice := domain.Choice{QuestionID: questionID, Text: text, IsCorrect: in.IsCorrect}
	if err := s.store.CreateChoice(ctx, &choice); err != nil {
		return domain.Choice{}, err
	}
	s.quizzes.Invalidate(ctx, question.QuizID)
	return choice, nil
}

func (s *AuthoringService) UpdateChoice(ctx context.Context, choiceID int64, in ChoiceInput) (domain.Choice, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Choice{}, fmt.Errorf("choice text cannot be empty: %w", domain.ErrInvalidChoice)
	}
	choice, err := s.store.GetChoice(ctx, choiceID)
	if err != nil {
		return domain.Choice{}, err
	}
	choice.Text = text
	choice.IsCorrect = in.IsCorrect
	if err := s.store.UpdateChoice(ctx, &choice); err != nil {
		return domain.Choice{}, err
	}
	s.invalidateForQuestion(ctx, choice.QuestionID)
	return choice, nil
}

func (s *AuthoringService) DeleteChoice(ctx context.Context, choiceID int64) error {
	choice, err := s.store.GetChoice(ctx, choiceID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteChoice(ctx, choiceID); err != nil {
		return err
	}
	s.invalidateForQuestion(ctx, choice.QuestionID)
	return nil
}

// ImportQuiz creates a quiz together with its questions and choices, applying the same
// validation as the individual operations. IDs on the input are ignored. The whole input
// is validated before anything is written, and a quiz left half-built by a store failure
// is removed again.
func (s *AuthoringService) ImportQuiz(ctx context.Context, in domain.Quiz) (domain.Quiz, error) {
	if err := validateImport(in); err != nil {
		return domain.Quiz{}, fmt.Errorf("import %q: %w", in.Title, err)
	}
	quiz, err := s.CreateQuiz(ctx, in.Title)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, q := range in.Questions {
		question, err := s.AddQuestion(ctx, quiz.ID, QuestionInput{Text: q.Text, Type: q.Type, Order: q.Order})
		if err != nil {
			s.abandonImport(ctx, quiz.ID)
			return domain.Quiz{}, fmt.Errorf("import %q: %w", in.Title, err)
		}
		for _, c := range q.Choices {
			choice, err := s.AddChoice(ctx, question.ID, ChoiceInput{Text: c.Text, IsCorrect: c.IsCorrect})
			if err != nil {
				s.abandonImport(ctx, quiz.ID)
				return domain.Quiz{}, fmt.Errorf("import %q: %w", in.Title, err)
			}
			question.Choices = append(question.Choices, choice)
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}

func (s *AuthoringService) abandonImport(ctx context.Context, quizID int64) {
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		log.Error().Err(err).Int64("quiz_id", quizID).Msg("partial import left behind")
		return
	}
	s.quizzes.Invalidate(ctx, quizID)
}

func validateImport(in domain.Quiz) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title cannot be empty: %w", domain.ErrInvalidQuiz)
	}
	for i, q := range in.Questions {
		if err := validateQuestion(QuestionInput{Text: q.Text, Type: q.Type, Order: q.Order}); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		for j, c := range q.Choices {
			if strings.TrimSpace(c.Text) == "" {
				return fmt.Errorf("question %d choice %d: choice text cannot be empty: %w", i+1, j+1, domain.ErrInvalidChoice)
			}
		}
	}
	return nil
}

func (s *AuthoringService) invalidateForQuestion(ctx context.Context, questionID int64) {
	question, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		log.Warn().Err(err).Int64("question_id", questionID).Msg("cache invalidation skipped")
		return
	}
	s.quizzes.Invalidate(ctx, question.QuizID)
}

func validateQuestion(in QuestionInput) error {
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("question text cannot be empty: %w", domain.ErrInvalidQuestion)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unknown question type %q: %w", in.Type, domain.ErrInvalidQuestion)
	}
	if in.Order < 0 {
		return fmt.Errorf("order must be non-negative: %w", domain.ErrInvalidQuestion)
	}
	return nil
}
