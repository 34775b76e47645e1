package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

// Store keeps quizzes and submissions in process memory. It implements the quiz loader,
// app.QuizStore and app.SubmissionStore, and is useful for tests and demos.
type Store struct {
	mu          sync.RWMutex
	seq         int64
	quizzes     map[int64]domain.Quiz
	questions   map[int64]domain.Question
	choices     map[int64]domain.Choice
	submissions map[int64]domain.Submission
	answers     map[int64]domain.Answer
}

func NewStore() *Store {
	return &Store{
		quizzes:     make(map[int64]domain.Quiz),
		questions:   make(map[int64]domain.Question),
		choices:     make(map[int64]domain.Choice),
		submissions: make(map[int64]domain.Submission),
		answers:     make(map[int64]domain.Answer),
	}
}

// nextID hands out identifiers from a single sequence; the caller holds mu.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// LoadQuiz assembles the quiz aggregate with questions and choices in display order.
func (s *Store) LoadQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Questions = nil
	for _, q := range s.questions {
		if q.QuizID == quizID {
			quiz.Questions = append(quiz.Questions, s.withChoicesLocked(q))
		}
	}
	quiz.SortQuestions()
	return quiz, nil
}

func (s *Store) withChoicesLocked(q domain.Question) domain.Question {
	q.Choices = nil
	for _, c := range s.choices {
		if c.QuestionID == q.ID {
			q.Choices = append(q.Choices, c)
		}
	}
	sort.Slice(q.Choices, func(i, j int) bool { return q.Choices[i].ID < q.Choices[j].ID })
	return q
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.QuizSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int, len(s.quizzes))
	for _, q := range s.questions {
		counts[q.QuizID]++
	}
	out := make([]domain.QuizSummary, 0, len(s.quizzes))
	for id, quiz := range s.quizzes {
		out = append(out, domain.QuizSummary{ID: id, Title: quiz.Title, QuestionCount: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = s.nextID()
	s.quizzes[quiz.ID] = domain.Quiz{ID: quiz.ID, Title: quiz.Title}
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, quizID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	for id, q := range s.questions {
		if q.QuizID == quizID {
			s.deleteQuestionLocked(id)
		}
	}
	for id, sub := range s.submissions {
		if sub.QuizID == quizID {
			delete(s.submissions, id)
			for aid, a := range s.answers {
				if a.SubmissionID == id {
					delete(s.answers, aid)
				}
			}
		}
	}
	delete(s.quizzes, quizID)
	return nil
}

func (s *Store) GetQuestion(_ context.Context, questionID int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return s.withChoicesLocked(q), nil
}

func (s *Store) CreateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[question.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	question.ID = s.nextID()
	stored := *question
	stored.Choices = nil
	s.questions[question.ID] = stored
	return nil
}

func (s *Store) UpdateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.questions[question.ID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	existing.Text = question.Text
	existing.Type = question.Type
	existing.Order = question.Order
	s.questions[question.ID] = existing
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, questionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.deleteQuestionLocked(questionID)
	return nil
}

func (s *Store) deleteQuestionLocked(questionID int64) {
	for id, c := range s.choices {
		if c.QuestionID == questionID {
			delete(s.choices, id)
		}
	}
	for id, a := range s.answers {
		if a.QuestionID == questionID {
			delete(s.answers, id)
		}
	}
	delete(s.questions, questionID)
}

func (s *Store) GetChoice(_ context.Context, choiceID int64) (domain.Choice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.choices[choiceID]
	if !ok {
		return domain.Choice{}, domain.ErrChoiceNotFound
	}
	return c, nil
}

func (s *Store) CreateChoice(_ context.Context, choice *domain.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[choice.QuestionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	choice.ID = s.nextID()
	s.choices[choice.ID] = *choice
	return nil
}

func (s *Store) UpdateChoice(_ context.Context, choice *domain.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.choices[choice.ID]
	if !ok {
		return domain.ErrChoiceNotFound
	}
	existing.Text = choice.Text
	existing.IsCorrect = choice.IsCorrect
	s.choices[choice.ID] = existing
	return nil
}

// DeleteChoice removes the choice and clears it from any answer that selected it.
func (s *Store) DeleteChoice(_ context.Context, choiceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.choices[choiceID]; !ok {
		return domain.ErrChoiceNotFound
	}
	for id, a := range s.answers {
		if a.SelectedChoiceID != nil && *a.SelectedChoiceID == choiceID {
			a.SelectedChoiceID = nil
			s.answers[id] = a
		}
	}
	delete(s.choices, choiceID)
	return nil
}

// WithinTx stages the writes made by fn and applies them only if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx app.SubmissionTx) error) error {
	tx := &submissionTx{store: s, submissions: make(map[int64]domain.Submission)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// authoring may have removed rows since fn read them; refuse to commit orphans
	for _, sub := range tx.submissions {
		if _, ok := s.quizzes[sub.QuizID]; !ok {
			return fmt.Errorf("commit submission: %w", domain.ErrQuizNotFound)
		}
	}
	for i, a := range tx.answers {
		q, ok := s.questions[a.QuestionID]
		if !ok || q.QuizID != tx.submissions[a.SubmissionID].QuizID {
			return fmt.Errorf("commit answer for question %d: %w", a.QuestionID, domain.ErrQuestionNotFound)
		}
		if a.SelectedChoiceID != nil {
			if _, ok := s.choices[*a.SelectedChoiceID]; !ok {
				tx.answers[i].SelectedChoiceID = nil
			}
		}
	}

	for id, sub := range tx.submissions {
		s.submissions[id] = sub
	}
	for _, a := range tx.answers {
		s.answers[a.ID] = a
	}
	return nil
}

// Submissions returns committed submissions ordered by id.
func (s *Store) Submissions() []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Answers returns the committed answers of a submission in recording order.
func (s *Store) Answers(submissionID int64) []domain.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Answer
	for _, a := range s.answers {
		if a.SubmissionID == submissionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var errSubmissionNotStaged = errors.New("submission not created in this transaction")

type submissionTx struct {
	store       *Store
	submissions map[int64]domain.Submission
	answers     []domain.Answer
}

func (tx *submissionTx) allocate() int64 {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return tx.store.nextID()
}

func (tx *submissionTx) CreateSubmission(_ context.Context, submission *domain.Submission) error {
	submission.ID = tx.allocate()
	tx.submissions[submission.ID] = *submission
	return nil
}

func (tx *submissionTx) CreateAnswer(_ context.Context, answer *domain.Answer) error {
	if _, ok := tx.submissions[answer.SubmissionID]; !ok {
		return errSubmissionNotStaged
	}
	answer.ID = tx.allocate()
	tx.answers = append(tx.answers, *answer)
	return nil
}

func (tx *submissionTx) SetScore(_ context.Context, submissionID int64, score *float64) error {
	sub, ok := tx.submissions[submissionID]
	if !ok {
		return errSubmissionNotStaged
	}
	sub.Score = score
	tx.submissions[submissionID] = sub
	return nil
}
