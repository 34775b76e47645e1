package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question id that does not belong to the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrChoiceNotFound is only returned by authoring operations; scoring treats
	// an unknown choice as no selection.
	ErrChoiceNotFound = errors.New("choice not found")
	// ErrMalformedRequest indicates the submitted payload failed shape validation.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrInvalidQuestion indicates authoring input that would produce an unusable question.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidChoice indicates authoring input that would produce an unusable choice.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrInvalidQuiz indicates authoring input that would produce an unusable quiz.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrRateLimited is returned when a caller exhausted its request quota.
	ErrRateLimited = errors.New("request was throttled")
)
