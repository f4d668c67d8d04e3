// Package api is the daemon's local HTTP surface: the engine contract
// exposed to the UI layer over localhost. Rendering and navigation live
// elsewhere; this is a JSON façade over load/send/delete.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"threadsync/pkg/engine"
	"threadsync/pkg/gateway"
	"threadsync/pkg/logger"
	"threadsync/pkg/models"
	"threadsync/pkg/session"
	"threadsync/pkg/store"
	"threadsync/pkg/utils"
)

// Server routes API requests onto engine sessions.
type Server struct {
	eng *engine.Engine
	st  *store.Store
}

// NewServer returns the API server over the given engine and store.
func NewServer(eng *engine.Engine, st *store.Store) *Server {
	return &Server{eng: eng, st: st}
}

// Router builds the gorilla/mux router for the v1 API.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.LogRequest(req)
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/conversations", s.listConversations).Methods(http.MethodGet)
	v1.HandleFunc("/conversations/{id}/messages", s.loadMessages).Methods(http.MethodGet)
	v1.HandleFunc("/conversations/{id}/messages", s.sendMessage).Methods(http.MethodPost)
	v1.HandleFunc("/conversations/{id}/messages/{msgID}", s.deleteMessage).Methods(http.MethodDelete)
	v1.HandleFunc("/conversations/{id}/error", s.currentError).Methods(http.MethodGet)
	v1.HandleFunc("/conversations/{id}/error", s.clearError).Methods(http.MethodDelete)
	return r
}

func (s *Server) session(r *http.Request) *session.Session {
	return session.Open(s.eng, mux.Vars(r)["id"])
}

// writeOpError maps the error taxonomy onto HTTP: gateway failures are bad
// upstream (502), a lost mirror is 503.
func writeOpError(w http.ResponseWriter, err error) {
	var re *gateway.RequestError
	switch {
	case errors.As(err, &re):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":           string(re.Op) + " failed",
			"upstream_status": re.StatusCode,
		})
	case errors.Is(err, store.ErrUnavailable):
		utils.JSONError(w, http.StatusServiceUnavailable, "local store unavailable")
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.st.ListConversations()
	if err != nil {
		writeOpError(w, err)
		return
	}
	out := make([]models.Conversation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.eng.Conversation(id))
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"conversations": out})
}

func (s *Server) loadMessages(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	var msgs []models.Message
	if r.URL.Query().Get("cached") == "1" {
		msgs = sess.Messages()
	} else {
		var err error
		msgs, err = sess.Load(r.Context())
		if err != nil {
			writeOpError(w, err)
			return
		}
	}
	logger.Debug("api_messages", "conversation", sess.ID(), "count", len(msgs))
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{
		"conversation": sess.ID(),
		"messages":     msgs,
	})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Text == "" {
		utils.JSONError(w, http.StatusBadRequest, "invalid json: text required")
		return
	}
	sess := s.session(r)
	m, err := sess.Send(r.Context(), in.Text)
	if err != nil {
		// the failed optimistic entry stays visible so the caller can retry
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "send failed",
			"message": m,
		})
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{"message": m})
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if err := sess.Delete(r.Context(), mux.Vars(r)["msgID"]); err != nil {
		writeOpError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) currentError(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	out := map[string]interface{}{"conversation": sess.ID()}
	if err := sess.CurrentError(); err != nil {
		out["error"] = err.Error()
		var re *gateway.RequestError
		if errors.As(err, &re) {
			out["kind"] = string(re.Op) + "_failed"
		} else if errors.Is(err, store.ErrUnavailable) {
			out["kind"] = "storage_unavailable"
		}
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

func (s *Server) clearError(w http.ResponseWriter, r *http.Request) {
	s.session(r).ClearError()
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "cleared"})
}
