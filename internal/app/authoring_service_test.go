package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/memory"
)

func TestAuthoringValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.authoring.CreateQuiz(ctx, "   "); !errors.Is(err, domain.ErrInvalidQuiz) {
		t.Fatalf("expected invalid quiz, got %v", err)
	}
	if _, err := f.authoring.AddQuestion(ctx, f.quizID, app.QuestionInput{Text: " ", Type: domain.QuestionMCQ}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question for blank text, got %v", err)
	}
	if _, err := f.authoring.AddQuestion(ctx, f.quizID, app.QuestionInput{Text: "x", Type: "essay"}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question for bad type, got %v", err)
	}
	if _, err := f.authoring.AddQuestion(ctx, 9999, app.QuestionInput{Text: "x", Type: domain.QuestionText}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, err := f.authoring.AddChoice(ctx, f.france, app.ChoiceInput{Text: ""}); !errors.Is(err, domain.ErrInvalidChoice) {
		t.Fatalf("expected invalid choice, got %v", err)
	}
	if _, err := f.authoring.AddChoice(ctx, 9999, app.ChoiceInput{Text: "x"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestUpdateQuestionRequiresTwoChoicesForChoiceTypes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// The unkeyed question only has one choice.
	_, err := f.authoring.UpdateQuestion(ctx, f.noKey, app.QuestionInput{Text: "Unkeyed", Type: domain.QuestionMCQ})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}

	updated, err := f.authoring.UpdateQuestion(ctx, f.noKey, app.QuestionInput{Text: "Now free text", Type: domain.QuestionText, Order: 7})
	if err != nil {
		t.Fatalf("update to text: %v", err)
	}
	if updated.Type != domain.QuestionText || updated.Order != 7 {
		t.Fatalf("unexpected update %+v", updated)
	}

	updated, err = f.authoring.UpdateQuestion(ctx, f.france, app.QuestionInput{Text: "Capital of France, again?", Type: domain.QuestionMCQ})
	if err != nil {
		t.Fatalf("update mcq: %v", err)
	}
	if updated.Text != "Capital of France, again?" {
		t.Fatalf("unexpected text %q", updated.Text)
	}
}

func TestMutationsInvalidateCachedQuiz(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Warm the cache.
	if _, err := f.authoring.GetQuiz(ctx, f.quizID); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	if _, err := f.authoring.UpdateChoice(ctx, f.lyon, app.ChoiceInput{Text: "Lyon", IsCorrect: true}); err != nil {
		t.Fatalf("update choice: %v", err)
	}
	res, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.france, ChoiceID: ptr(f.lyon)}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Results[0].IsCorrect {
		t.Fatalf("expected scoring to see the updated choice")
	}

	if err := f.authoring.DeleteQuestion(ctx, f.essay); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	_, err = f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.essay}})
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected deleted question to be rejected, got %v", err)
	}
}

func TestDeleteChoiceKeepsRecordedAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.france, ChoiceID: ptr(f.paris)}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.authoring.DeleteChoice(ctx, f.paris); err != nil {
		t.Fatalf("delete choice: %v", err)
	}

	answers := f.store.Answers(res.SubmissionID)
	if len(answers) != 1 || answers[0].SelectedChoiceID != nil {
		t.Fatalf("expected answer kept with cleared choice, got %+v", answers)
	}
	subs := f.store.Submissions()
	if subs[0].Score == nil || *subs[0].Score != 100 {
		t.Fatalf("recorded score must not change, got %v", subs[0].Score)
	}

	quiz, err := f.authoring.GetQuiz(ctx, f.quizID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	q, _ := quiz.Question(f.france)
	if _, ok := q.Choice(f.paris); ok {
		t.Fatalf("expected deleted choice to be gone from the quiz")
	}
}

func TestListAndImportQuizzes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	imported, err := f.authoring.ImportQuiz(ctx, domain.Quiz{
		Title: "Imported",
		Questions: []domain.Question{{
			Text: "2 + 2 = 4",
			Type: domain.QuestionTrueFalse,
			Choices: []domain.Choice{
				{Text: "True", IsCorrect: true},
				{Text: "False"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported.Questions) != 1 || len(imported.Questions[0].Choices) != 2 {
		t.Fatalf("unexpected import %+v", imported)
	}

	list, err := f.authoring.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var found bool
	for _, s := range list {
		if s.ID == f.quizID && s.QuestionCount != 4 {
			t.Fatalf("expected 4 questions in fixture quiz, got %d", s.QuestionCount)
		}
		if s.ID == imported.ID {
			found = s.Title == "Imported" && s.QuestionCount == 1
		}
	}
	if !found {
		t.Fatalf("imported quiz missing from %+v", list)
	}

	if _, err := f.authoring.ImportQuiz(ctx, domain.Quiz{Title: "Bad", Questions: []domain.Question{{Text: "", Type: domain.QuestionText}}}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected import to reject blank question, got %v", err)
	}
}

func TestImportRejectsLateInvalidChoiceWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before, err := f.authoring.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	_, err = f.authoring.ImportQuiz(ctx, domain.Quiz{
		Title: "Half",
		Questions: []domain.Question{
			{Text: "First", Type: domain.QuestionMCQ, Choices: []domain.Choice{{Text: "A", IsCorrect: true}, {Text: "B"}}},
			{Text: "Second", Type: domain.QuestionMCQ, Choices: []domain.Choice{{Text: "A", IsCorrect: true}, {Text: "  "}}},
		},
	})
	if !errors.Is(err, domain.ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}

	after, err := f.authoring.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected no quiz to be created, before=%+v after=%+v", before, after)
	}
}

// choiceFailingStore fails every choice insert after the first.
type choiceFailingStore struct {
	*memory.Store
	created int
}

func (s *choiceFailingStore) CreateChoice(ctx context.Context, choice *domain.Choice) error {
	if s.created > 0 {
		return errors.New("connection reset")
	}
	s.created++
	return s.Store.CreateChoice(ctx, choice)
}

func TestImportRemovesQuizAfterStoreFailure(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	store := &choiceFailingStore{Store: base}
	authoring := app.NewAuthoringService(store, memory.NewQuizRepository(base, time.Minute))

	_, err := authoring.ImportQuiz(ctx, domain.Quiz{
		Title: "Flaky",
		Questions: []domain.Question{
			{Text: "Q", Type: domain.QuestionMCQ, Choices: []domain.Choice{{Text: "A", IsCorrect: true}, {Text: "B"}}},
		},
	})
	if err == nil {
		t.Fatalf("expected import to fail")
	}

	list, err := authoring.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected partial quiz to be removed, got %+v", list)
	}
}

func TestDeleteQuizRemovesEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.france, ChoiceID: ptr(f.paris)}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.authoring.DeleteQuiz(ctx, f.quizID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if _, err := f.authoring.GetQuiz(ctx, f.quizID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if len(f.store.Submissions()) != 0 {
		t.Fatalf("expected submissions removed with the quiz")
	}
	if err := f.authoring.DeleteQuiz(ctx, f.quizID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}
