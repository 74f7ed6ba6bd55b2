package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/AdamBeresnev/bracket-scheduler/internal/httputil"
	"github.com/AdamBeresnev/bracket-scheduler/internal/middleware"
	"github.com/AdamBeresnev/bracket-scheduler/internal/service"
	"github.com/AdamBeresnev/bracket-scheduler/internal/store"
	"github.com/AdamBeresnev/bracket-scheduler/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newRouter(bracketService *service.BracketService, sessionManager *scs.SessionManager, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadOrganization(sessionManager))

	r.Post("/session", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OrganizationID string `json:"organizationId"`
		}
		if err := decodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}
		orgID := strings.TrimSpace(body.OrganizationID)
		if orgID == "" {
			httputil.BadRequest(w, "organizationId is required", nil)
			return
		}
		if err := sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		sessionManager.Put(r.Context(), middleware.SessionOrganizationKey, orgID)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/brackets", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var in service.CreateBracketInput
			if err := decodeJSON(r, &in); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			b, err := bracketService.CreateBracket(r.Context(), in)
			if err != nil {
				httputil.Error(w, "Failed to create bracket", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, b)
		})

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			filter := store.ListFilter{
				Status:       bracket.Status(strings.ToUpper(q.Get("status"))),
				Type:         bracket.Type(strings.ToUpper(q.Get("type"))),
				TournamentID: q.Get("tournamentId"),
			}
			brackets, err := bracketService.ListBrackets(r.Context(), filter)
			if err != nil {
				httputil.Error(w, "Failed to list brackets", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, brackets)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				b, err := bracketService.GetBracket(r.Context(), id)
				if err != nil {
					httputil.Error(w, "Failed to get bracket", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, b)
			})

			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				if err := bracketService.DeleteBracket(r.Context(), id); err != nil {
					httputil.Error(w, "Failed to delete bracket", err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Get("/visualization", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				b, err := bracketService.GetBracket(r.Context(), id)
				if err != nil {
					httputil.Error(w, "Failed to get bracket", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, views.PrepareBracketData(b))
			})

			r.Get("/conflicts", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				report, err := bracketService.DetectConflicts(r.Context(), id)
				if err != nil {
					httputil.Error(w, "Failed to detect conflicts", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, report)
			})

			r.Put("/schedule", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				var update service.ScheduleUpdate
				if err := decodeJSON(r, &update); err != nil {
					httputil.BadRequest(w, "Invalid request body", err)
					return
				}
				b, err := bracketService.RescheduleBracket(r.Context(), id, update)
				if err != nil {
					httputil.Error(w, "Failed to reschedule bracket", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, b)
			})

			r.Post("/simulate", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				var in service.SimulateInput
				if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
					httputil.BadRequest(w, "Invalid request body", err)
					return
				}
				result, err := bracketService.Simulate(r.Context(), id, in)
				if err != nil {
					httputil.Error(w, "Failed to simulate bracket", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, result)
			})

			r.Post("/games/{gameId}/result", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				gameID, ok := urlUUID(w, r, "gameId")
				if !ok {
					return
				}
				var result service.GameResult
				if err := decodeJSON(r, &result); err != nil {
					httputil.BadRequest(w, "Invalid request body", err)
					return
				}
				b, err := bracketService.AdvanceWinner(r.Context(), id, gameID, result)
				if err != nil {
					httputil.Error(w, "Failed to advance winner", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, b)
			})

			r.Put("/games/{gameId}/status", func(w http.ResponseWriter, r *http.Request) {
				id, ok := urlUUID(w, r, "id")
				if !ok {
					return
				}
				gameID, ok := urlUUID(w, r, "gameId")
				if !ok {
					return
				}
				var report service.StatusReport
				if err := decodeJSON(r, &report); err != nil {
					httputil.BadRequest(w, "Invalid request body", err)
					return
				}
				b, err := bracketService.ReportGameStatus(r.Context(), id, gameID, report)
				if err != nil {
					httputil.Error(w, "Failed to update game status", err)
					return
				}
				httputil.WriteJSON(w, http.StatusOK, b)
			})
		})
	})

	return r
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+param, err)
		return uuid.Nil, false
	}
	return id, true
}
