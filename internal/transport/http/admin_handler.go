package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/app"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

type quizPayload struct {
	Title string `json:"title"`
}

type questionPayload struct {
	Text  string              `json:"text"`
	Type  domain.QuestionType `json:"qtype"`
	Order int                 `json:"order"`
}

type choicePayload struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var p quizPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	quiz, err := h.authoring.CreateQuiz(r.Context(), p.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.AuthoringView(quiz))
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quizID")
	if !ok {
		return
	}
	if err := h.authoring.DeleteQuiz(r.Context(), quizID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quizID")
	if !ok {
		return
	}
	p := questionPayload{Type: domain.QuestionMCQ}
	if !decodeJSON(w, r, &p) {
		return
	}
	question, err := h.authoring.AddQuestion(r.Context(), quizID, app.QuestionInput{Text: p.Text, Type: p.Type, Order: p.Order})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.AuthoringQuestionView(question))
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "questionID")
	if !ok {
		return
	}
	var p questionPayload
	if !decodeJSON(w, r, &p) {
		return
	}
	question, err := h.authoring.UpdateQuestion(r.Context(), questionID, app.QuestionInput{Text: p.Text, Type: p.Type, Order: p.Order})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthoringQuestionView(question))
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "questionID")
	if !ok {
		return
	}
	if err := h.authoring.DeleteQuestion(r.Context(), questionID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addChoice(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "questionID")
	if !ok {
		return
	}
	var p choicePayload
	if !decodeJSON(w, r, &p) {
		return
	}
	choice, err := h.authoring.AddChoice(r.Context(), questionID, app.ChoiceInput{Text: p.Text, IsCorrect: p.IsCorrect})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.AuthoringChoiceView(choice))
}

func (h *Handler) updateChoice(w http.ResponseWriter, r *http.Request) {
	choiceID, ok := pathID(w, r, "choiceID")
	if !ok {
		return
	}
	var p choicePayload
	if !decodeJSON(w, r, &p) {
		return
	}
	choice, err := h.authoring.UpdateChoice(r.Context(), choiceID, app.ChoiceInput{Text: p.Text, IsCorrect: p.IsCorrect})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthoringChoiceView(choice))
}

func (h *Handler) deleteChoice(w http.ResponseWriter, r *http.Request) {
	choiceID, ok := pathID(w, r, "choiceID")
	if !ok {
		return
	}
	if err := h.authoring.DeleteChoice(r.Context(), choiceID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, r, fmt.Errorf("invalid JSON body: %v: %w", err, domain.ErrMalformedRequest))
		return false
	}
	return true
}
