package internal

import (
	"net/http"

	"asset-tracker-api/internal/models"
	"asset-tracker-api/internal/store"

	"github.com/go-chi/chi/v5"
)

func (s *Server) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePurchaseRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	p, err := s.Store.CreatePurchase(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	purchases, err := s.Store.ListPurchases(r.Context(), store.PurchaseFilter{
		Search: params.search,
		Skip:   params.skip,
		Limit:  params.limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, purchases)
}

// getPurchase returns the detail view: purchase plus device briefs.
func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid purchase id")
		return
	}

	detail, err := s.Store.GetPurchaseDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		s.writeInvalid(w, "invalid purchase id")
		return
	}

	var req models.UpdatePurchaseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	p, err := s.Store.UpdatePurchase(r.Context(), id, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}
