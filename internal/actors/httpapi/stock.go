package httpapi

import (
	"net/http"

	"github.com/eventala/eventala/internal/core/model"
)

type stockRequest struct {
	Label    string `json:"label"`
	Quantity int64  `json:"quantity"`
}

func (s *Server) createStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.stocks.CreateStock(r.Context(), model.CreateStockArgs{
		Label:    req.Label,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"stock_id": resp.Stock.StockID})
}

func (s *Server) getStock(w http.ResponseWriter, r *http.Request) {
	stock, err := s.stocks.GetStock(r.Context(), r.PathValue("stockId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stock)
}

func (s *Server) listStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.stocks.ListStocks(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stocks)
}

func (s *Server) updateStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w)
		return
	}

	resp, err := s.stocks.UpdateStock(r.Context(), model.UpdateStockArgs{
		StockID:  r.PathValue("stockId"),
		Label:    req.Label,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"stock_id": resp.Stock.StockID})
}

func (s *Server) deleteStock(w http.ResponseWriter, r *http.Request) {
	if err := s.stocks.DeleteStock(r.Context(), r.PathValue("stockId")); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"msg": "stock deleted"})
}
