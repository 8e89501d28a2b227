package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"isp_billing_panel/internal/app"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError maps the app error taxonomy onto status codes. Anything
// unrecognised is logged and reported as a generic 500.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, app.ErrValidation):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, app.ErrClientNotFound):
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: "Client not found"})
	case errors.Is(err, app.ErrInvalidCredentials):
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
	case errors.Is(err, app.ErrUnauthenticated):
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, app.ErrSweepInProgress):
		respondWithJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("Request failed")
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

type okResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
