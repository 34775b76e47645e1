package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

const maxBodyBytes = 1 << 20

type submitRequest struct {
	Answers *[]answerPayload `json:"answers"`
}

type answerPayload struct {
	Question *int64  `json:"question"`
	Choice   *int64  `json:"choice"`
	Text     *string `json:"text"`
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.authoring.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quizID")
	if !ok {
		return
	}
	quiz, err := h.authoring.GetQuiz(r.Context(), quizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthoringView(quiz))
}

func (h *Handler) getPublicQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quizID")
	if !ok {
		return
	}
	quiz, err := h.authoring.GetQuiz(r.Context(), quizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.PublicView(quiz))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(w, r, "quizID")
	if !ok {
		return
	}
	// an unknown quiz is reported before anything about the body
	if _, err := h.authoring.GetQuiz(r.Context(), quizID); err != nil {
		submissions.WithLabelValues("rejected").Inc()
		writeError(w, r, err)
		return
	}
	entries, err := decodeSubmission(w, r)
	if err != nil {
		submissions.WithLabelValues("rejected").Inc()
		writeError(w, r, err)
		return
	}
	result, err := h.scoring.Submit(r.Context(), quizID, entries)
	if err != nil {
		submissions.WithLabelValues("rejected").Inc()
		writeError(w, r, err)
		return
	}
	submissions.WithLabelValues("scored").Inc()
	writeJSON(w, http.StatusCreated, result)
}

// decodeSubmission validates the request shape and converts it to answer entries.
func decodeSubmission(w http.ResponseWriter, r *http.Request) ([]domain.AnswerEntry, error) {
	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %v: %w", err, domain.ErrMalformedRequest)
	}
	if req.Answers == nil {
		return nil, fmt.Errorf("answers is required: %w", domain.ErrMalformedRequest)
	}

	entries := make([]domain.AnswerEntry, 0, len(*req.Answers))
	for i, a := range *req.Answers {
		if a.Question == nil {
			return nil, fmt.Errorf("answers[%d].question is required: %w", i, domain.ErrMalformedRequest)
		}
		entries = append(entries, domain.AnswerEntry{
			QuestionID: *a.Question,
			ChoiceID:   a.Choice,
			Text:       a.Text,
		})
	}
	return entries, nil
}

// pathID parses an integer URL parameter; anything else cannot name a resource.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}
