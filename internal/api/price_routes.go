package api

import (
	"net/http"
	"strings"
)

const maxPriceIDs = 25

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if s.prices == nil {
		writeError(w, http.StatusServiceUnavailable, "price client not configured")
		return
	}

	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing ids parameter")
		return
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 || len(ids) > maxPriceIDs {
		writeError(w, http.StatusBadRequest, "ids must name between 1 and 25 coins")
		return
	}

	prices, err := s.prices.GetPrices(r.Context(), ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("price lookup failed")
		writeError(w, http.StatusBadGateway, "failed to fetch prices")
		return
	}
	writeJSON(w, http.StatusOK, prices)
}
