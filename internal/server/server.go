package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/codefarman/chatGPT-Widget/internal/chat"
	"github.com/codefarman/chatGPT-Widget/internal/config"
	"github.com/codefarman/chatGPT-Widget/internal/lead"
	"github.com/codefarman/chatGPT-Widget/internal/origin"
	"github.com/codefarman/chatGPT-Widget/internal/types"
)

// Stable machine-readable error codes.
const (
	codeOriginNotAllowed  = "origin_not_allowed"
	codeTurnsRequired     = "turns required"
	codeLeadFieldsMissing = "name & phone required"
	codeChatError         = "chat_error"
	codeLeadNotConfigured = "lead_webhook_not_configured"
	codeLeadForwardError  = "lead_forward_error"
)

type ChatService interface {
	Complete(ctx context.Context, turns []types.ChatTurn) (chat.Result, error)
}

type LeadService interface {
	Forward(ctx context.Context, sub types.LeadRequest) (any, error)
}

type Server struct {
	router  *chi.Mux
	cfg     config.Config
	matcher *origin.Matcher
	chat    ChatService
	leads   LeadService
}

func NewServer(cfg config.Config, matcher *origin.Matcher, chatSvc ChatService, leadSvc LeadService) *Server {
	r := chi.NewRouter()
	s := &Server{
		router:  r,
		cfg:     cfg,
		matcher: matcher,
		chat:    chatSvc,
		leads:   leadSvc,
	}

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, o string) bool {
			return matcher.Allow(o)
		},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))
	r.Use(s.admitOrigin)

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/", s.handleHealth)
	s.router.Post("/chat", s.handleChat)
	s.router.Post("/lead", s.handleLead)
	// preflights are answered by the CORS middleware; this catches bare
	// OPTIONS probes so they never reach route logic either
	s.router.Options("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (s *Server) Router() http.Handler { return s.router }

// admitOrigin gates every request on the allow-list before any route logic
// runs. Requests without an Origin header pass: they are not browser calls.
func (s *Server) admitOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if o := r.Header.Get("Origin"); !s.matcher.Allow(o) {
			log.Printf("[origin] denied: %s %s from %s", r.Method, r.URL.Path, o)
			s.writeError(w, http.StatusForbidden, codeOriginNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Turns) == 0 {
		s.writeError(w, http.StatusBadRequest, codeTurnsRequired)
		return
	}
	result, err := s.chat.Complete(r.Context(), req.Turns)
	if err != nil {
		if errors.Is(err, chat.ErrTurnsRequired) {
			s.writeError(w, http.StatusBadRequest, codeTurnsRequired)
			return
		}
		log.Printf("[chat] upstream failure: %v", err)
		s.writeErrorDetails(w, http.StatusInternalServerError, codeChatError, err.Error())
		return
	}
	chips := result.Chips
	if chips == nil {
		chips = []string{}
	}
	s.writeJSON(w, http.StatusOK, types.ChatResponse{Reply: result.Reply, Chips: chips})
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	var req types.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, codeLeadFieldsMissing)
		return
	}
	upstream, err := s.leads.Forward(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, lead.ErrMissingFields):
			s.writeError(w, http.StatusBadRequest, codeLeadFieldsMissing)
		case errors.Is(err, lead.ErrNotConfigured):
			log.Printf("[lead] webhook not configured")
			s.writeError(w, http.StatusInternalServerError, codeLeadNotConfigured)
		default:
			log.Printf("[lead] forward failure: %v", err)
			s.writeErrorDetails(w, http.StatusInternalServerError, codeLeadForwardError, err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusOK, types.LeadResponse{Success: true, Forwarded: true, UpstreamResponse: upstream})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func (s *Server) writeErrorDetails(w http.ResponseWriter, code int, msg, details string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg, Details: details})
}
