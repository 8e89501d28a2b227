package httpapi

import (
	"net/http"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	history, err := s.notifications.List(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.Clear(r.Context()); err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleTestNotification pushes a test message through every external
// channel. It reports per-channel results and never fails the request.
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	results := s.notifications.SendTest(r.Context())
	delivered := 0
	for _, res := range results {
		if res.Delivered {
			delivered++
		}
	}
	message := "Test notification sent!"
	switch {
	case len(results) == 0:
		message = "No delivery channels are configured."
	case delivered < len(results):
		message = "Test notification failed on some channels."
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      delivered == len(results),
		"message": message,
		"results": results,
	})
}
