package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/domain"
)

type errorPayload struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorPayload{Detail: detail})
}

// writeError maps domain errors to HTTP statuses. Unclassified errors are logged
// and reported without internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrChoiceNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMalformedRequest),
		errors.Is(err, domain.ErrInvalidQuiz),
		errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidChoice):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeDetail(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}
