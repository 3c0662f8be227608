package api

import (
	"encoding/json"
	"net/http"

	"github.com/vaultfolio/ledger-backend/internal/ledger"
	"github.com/vaultfolio/ledger-backend/internal/models"
)

func (s *Server) handleListBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.ListBots(r.Context()))
}

func (s *Server) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	var params ledger.CreateBotParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bot, err := s.ledger.CreateBot(r.Context(), params)
	if err != nil {
		s.log.Error().Err(err).Msg("create bot")
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bot)
}

func (s *Server) handleSaveBot(w http.ResponseWriter, r *http.Request) {
	var bot models.Bot
	if err := json.NewDecoder(r.Body).Decode(&bot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The path, not the body, names the bot being saved.
	bot.ID = r.PathValue("id")

	saved, err := s.ledger.SaveBot(r.Context(), bot)
	if err != nil {
		s.log.Error().Err(err).Str("bot", bot.ID).Msg("save bot")
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteBot(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBot(r.Context(), r.PathValue("id")); err != nil {
		s.log.Error().Err(err).Msg("delete bot")
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleBot(w http.ResponseWriter, r *http.Request) {
	bot, err := s.ledger.ToggleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bot)
}

func (s *Server) handleExecuteBot(w http.ResponseWriter, r *http.Request) {
	exec, err := s.ledger.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.GetAnalytics(r.Context()))
}

func (s *Server) handleExecutions(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100)
	writeJSON(w, http.StatusOK, s.ledger.Executions(r.Context(), limit))
}
