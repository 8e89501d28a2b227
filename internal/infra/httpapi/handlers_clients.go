package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"isp_billing_panel/internal/app"

	"github.com/go-chi/chi/v5"
)

// cycleField accepts billingCycle as either a JSON number or a string.
type cycleField string

func (c *cycleField) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*c = cycleField(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = cycleField(s)
	return nil
}

type createClientRequest struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Plan         string     `json:"plan"`
	Location     string     `json:"location"`
	InstallDate  string     `json:"installDate"`
	BillingCycle cycleField `json:"billingCycle"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.clients.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondWithError(w, r, &app.ValidationError{Reason: "invalid request body"})
		return
	}

	created, err := s.clients.Create(r.Context(), app.NewClientInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Plan:         req.Plan,
		Location:     req.Location,
		InstallDate:  req.InstallDate,
		BillingCycle: string(req.BillingCycle),
	})
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, created)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	found, err := s.clients.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, found)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	paid, err := s.clients.RecordPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, paid)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	removed, err := s.clients.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "removed": removed})
}

func (s *Server) handleExportClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.clients.List(r.Context(), "")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	body, err := json.MarshalIndent(clients, "", "  ")
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="clients.json"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.clients.Summary(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sum)
}

func (s *Server) handleRunCheck(w http.ResponseWriter, r *http.Request) {
	summary, err := s.sweep.Run(r.Context())
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		app.SweepSummary
		Message string `json:"message"`
	}{summary, summary.Message()})
}

// decodeBody reads JSON, or a classic form post, into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return err
		}
		values := map[string]string{}
		for k := range r.PostForm {
			values[k] = r.PostForm.Get(k)
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
