package app_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/memory"
)

func TestSubmitCorrectChoiceScoresFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.france, ChoiceID: ptr(f.paris)}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score == nil || *res.Score != 100 || res.Correct != 1 || res.Total != 1 {
		t.Fatalf("unexpected summary score=%v correct=%d total=%d", res.Score, res.Correct, res.Total)
	}
	r := res.Results[0]
	if !r.IsCorrect || r.UserAnswer != "Paris" || r.CorrectAnswer == nil || *r.CorrectAnswer != "Paris" {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.QuestionText != "Capital of France?" || r.QuestionType != domain.QuestionMCQ {
		t.Fatalf("unexpected question fields %+v", r)
	}
}

func TestSubmitWrongChoiceScoresZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.france, ChoiceID: ptr(f.lyon)}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score == nil || *res.Score != 0 || res.Correct != 0 || res.Total != 1 {
		t.Fatalf("unexpected summary score=%v correct=%d total=%d", res.Score, res.Correct, res.Total)
	}
	if res.Results[0].UserAnswer != "Lyon" || res.Results[0].IsCorrect {
		t.Fatalf("unexpected result %+v", res.Results[0])
	}
}

func TestSubmitTextOnlyQuizHasNoScore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	quiz, _ := f.authoring.CreateQuiz(ctx, "Essay")
	q, err := f.authoring.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Describe Paris", Type: domain.QuestionText})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}

	res, err := f.scoring.Submit(ctx, quiz.ID, []domain.AnswerEntry{{QuestionID: q.ID, Text: ptr("It is big")}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != nil || res.Correct != 0 || res.Total != 0 {
		t.Fatalf("expected null score, got score=%v correct=%d total=%d", res.Score, res.Correct, res.Total)
	}
	r := res.Results[0]
	if r.IsCorrect || r.CorrectAnswer != nil || r.UserAnswer != "It is big" {
		t.Fatalf("unexpected text result %+v", r)
	}

	subs := f.store.Submissions()
	if len(subs) != 1 || subs[0].Score != nil {
		t.Fatalf("expected persisted submission with null score, got %+v", subs)
	}
}

func TestSubmitForeignChoiceIsNoSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{
		{QuestionID: f.france, ChoiceID: ptr(f.falseChoice), Text: ptr("guess")},
		{QuestionID: f.france, ChoiceID: ptr(int64(9999))},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Results[0].UserAnswer != "guess" || res.Results[0].IsCorrect {
		t.Fatalf("expected fallback to text, got %+v", res.Results[0])
	}
	if res.Results[1].UserAnswer != "" || res.Results[1].IsCorrect {
		t.Fatalf("expected empty user answer, got %+v", res.Results[1])
	}
	if res.Total != 2 || res.Correct != 0 {
		t.Fatalf("unexpected counters correct=%d total=%d", res.Correct, res.Total)
	}

	answers := f.store.Answers(res.SubmissionID)
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	if answers[0].SelectedChoiceID != nil || answers[0].TextAnswer != "guess" {
		t.Fatalf("unexpected stored answer %+v", answers[0])
	}
}

func TestSubmitUnknownQuestionPersistsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{
		{QuestionID: f.france, ChoiceID: ptr(f.paris)},
		{QuestionID: 424242},
	})
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
	if subs := f.store.Submissions(); len(subs) != 0 {
		t.Fatalf("expected no submissions, got %+v", subs)
	}

	// A question from another quiz is just as foreign.
	_, err = f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.other}})
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found for foreign quiz question, got %v", err)
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	f := newFixture(t)
	_, err := f.scoring.Submit(context.Background(), 9999, nil)
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if subs := f.store.Submissions(); len(subs) != 0 {
		t.Fatalf("expected no submissions, got %+v", subs)
	}
}

func TestSubmitPreservesInputOrderAndScore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{
		{QuestionID: f.truth, ChoiceID: ptr(f.trueChoice)},
		{QuestionID: f.essay, Text: ptr("free")},
		{QuestionID: f.france, ChoiceID: ptr(f.lyon)},
		{QuestionID: f.noKey, ChoiceID: ptr(f.noKeyChoice)},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := []int64{f.truth, f.essay, f.france, f.noKey}
	if len(res.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(res.Results))
	}
	for i, id := range want {
		if res.Results[i].QuestionID != id {
			t.Fatalf("result %d: expected question %d, got %d", i, id, res.Results[i].QuestionID)
		}
	}
	if res.Correct != 1 || res.Total != 3 {
		t.Fatalf("unexpected counters correct=%d total=%d", res.Correct, res.Total)
	}
	if res.Score == nil || math.Abs(*res.Score-100.0/3) > 1e-9 {
		t.Fatalf("expected unrounded 33.33..., got %v", res.Score)
	}
	// A question without any correct choice is answerable but can never be right.
	if res.Results[3].CorrectAnswer != nil || res.Results[3].IsCorrect {
		t.Fatalf("unexpected result for unkeyed question %+v", res.Results[3])
	}

	subs := f.store.Submissions()
	if len(subs) != 1 || subs[0].Score == nil || *subs[0].Score != *res.Score {
		t.Fatalf("expected persisted score, got %+v", subs)
	}
	if !subs[0].CreatedAt.Equal(f.now) {
		t.Fatalf("expected created at %v, got %v", f.now, subs[0].CreatedAt)
	}
	answers := f.store.Answers(subs[0].ID)
	if len(answers) != 4 || answers[0].QuestionID != f.truth || answers[3].QuestionID != f.noKey {
		t.Fatalf("expected answers in input order, got %+v", answers)
	}
}

func TestSubmitMultipleCorrectFlagsUsesLowestID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	quiz, _ := f.authoring.CreateQuiz(ctx, "Ambiguous")
	q, _ := f.authoring.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Pick one", Type: domain.QuestionMCQ})
	first, _ := f.authoring.AddChoice(ctx, q.ID, app.ChoiceInput{Text: "first", IsCorrect: true})
	second, _ := f.authoring.AddChoice(ctx, q.ID, app.ChoiceInput{Text: "second", IsCorrect: true})

	res, err := f.scoring.Submit(ctx, quiz.ID, []domain.AnswerEntry{{QuestionID: q.ID, ChoiceID: ptr(second.ID)}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	r := res.Results[0]
	if !r.IsCorrect || r.CorrectAnswer == nil || *r.CorrectAnswer != first.Text {
		t.Fatalf("expected correct with canonical %q, got %+v", first.Text, r)
	}
}

func TestSubmitEmptyAnswerList(t *testing.T) {
	f := newFixture(t)
	res, err := f.scoring.Submit(context.Background(), f.quizID, []domain.AnswerEntry{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != nil || res.Total != 0 || len(res.Results) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if subs := f.store.Submissions(); len(subs) != 1 {
		t.Fatalf("expected one empty submission, got %d", len(subs))
	}
}

func TestSubmitConcurrentAttemptsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		choice := f.paris
		if i%2 == 1 {
			choice = f.lyon
		}
		wg.Add(1)
		go func(choice int64) {
			defer wg.Done()
			_, err := f.scoring.Submit(ctx, f.quizID, []domain.AnswerEntry{{QuestionID: f.france, ChoiceID: ptr(choice)}})
			errs <- err
		}(choice)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	subs := f.store.Submissions()
	if len(subs) != 20 {
		t.Fatalf("expected 20 submissions, got %d", len(subs))
	}
	for _, sub := range subs {
		if n := len(f.store.Answers(sub.ID)); n != 1 {
			t.Fatalf("submission %d has %d answers", sub.ID, n)
		}
	}
}

type fixture struct {
	store     *memory.Store
	scoring   *app.ScoringService
	authoring *app.AuthoringService
	now       time.Time

	quizID int64

	// question ids
	france, truth, essay, noKey, other int64

	// choice ids
	paris, lyon, trueChoice, falseChoice, noKeyChoice int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewQuizRepository(store, time.Minute)
	f := &fixture{
		store:     store,
		authoring: app.NewAuthoringService(store, repo),
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.scoring = app.NewScoringServiceWithClock(repo, store, func() time.Time { return f.now })

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	quiz, err := f.authoring.CreateQuiz(ctx, "Capitals")
	must(err)
	f.quizID = quiz.ID

	france, err := f.authoring.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Capital of France?", Type: domain.QuestionMCQ, Order: 2})
	must(err)
	f.france = france.ID
	paris, err := f.authoring.AddChoice(ctx, france.ID, app.ChoiceInput{Text: "Paris", IsCorrect: true})
	must(err)
	lyon, err := f.authoring.AddChoice(ctx, france.ID, app.ChoiceInput{Text: "Lyon"})
	must(err)
	f.paris, f.lyon = paris.ID, lyon.ID

	truth, err := f.authoring.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Berlin is in Germany", Type: domain.QuestionTrueFalse, Order: 1})
	must(err)
	f.truth = truth.ID
	trueChoice, err := f.authoring.AddChoice(ctx, truth.ID, app.ChoiceInput{Text: "True", IsCorrect: true})
	must(err)
	falseChoice, err := f.authoring.AddChoice(ctx, truth.ID, app.ChoiceInput{Text: "False"})
	must(err)
	f.trueChoice, f.falseChoice = trueChoice.ID, falseChoice.ID

	essay, err := f.authoring.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Why?", Type: domain.QuestionText})
	must(err)
	f.essay = essay.ID

	noKey, err := f.authoring.AddQuestion(ctx, quiz.ID, app.QuestionInput{Text: "Unkeyed", Type: domain.QuestionMCQ, Order: 3})
	must(err)
	f.noKey = noKey.ID
	noKeyChoice, err := f.authoring.AddChoice(ctx, noKey.ID, app.ChoiceInput{Text: "Anything"})
	must(err)
	f.noKeyChoice = noKeyChoice.ID

	other, err := f.authoring.CreateQuiz(ctx, "Other")
	must(err)
	otherQ, err := f.authoring.AddQuestion(ctx, other.ID, app.QuestionInput{Text: "Elsewhere", Type: domain.QuestionText})
	must(err)
	f.other = otherQ.ID

	return f
}

func ptr[T any](v T) *T {
	return &v
}
