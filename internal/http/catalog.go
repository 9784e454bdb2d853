package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/perch-labs/noticeboard/internal/board"
	"github.com/perch-labs/noticeboard/internal/domain"
)

type catalogCreateRequest struct {
	Title    string   `json:"title"`
	Synopsis string   `json:"synopsis"`
	Director string   `json:"director"`
	Cast     []string `json:"cast"`
}

type catalogResponse struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Synopsis string          `json:"synopsis,omitempty"`
	Director string          `json:"director,omitempty"`
	Cast     []string        `json:"cast,omitempty"`
	Rating   *ratingResponse `json:"rating,omitempty"`
	AddedAt  time.Time       `json:"addedAt"`
}

type voteRequest struct {
	Score int `json:"score"`
}

type voteResponse struct {
	RecordID  string `json:"recordId"`
	Principal string `json:"principal"`
	Score     int    `json:"score"`
}

type ratingResponse struct {
	Average uint64 `json:"average"`
	Votes   uint64 `json:"votes"`
}

func (s *Server) handleAddCatalogEntry(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	caller, ok := callerPrincipal(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req catalogCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	id, err := s.board.AddCatalogEntry(r.Context(), caller, board.CatalogEntryParams{
		Title:    req.Title,
		Synopsis: req.Synopsis,
		Director: req.Director,
		Cast:     req.Cast,
	})
	if err != nil {
		s.respondBoardError(w, err, "Failed to add catalog entry")
		return
	}

	entry, err := s.board.GetCatalogEntry(id)
	if err != nil {
		s.respondBoardError(w, err, "Failed to add catalog entry")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/catalog/%s", url.PathEscape(string(id))))
	s.respondJSON(w, http.StatusCreated, toCatalogResponse(entry))
}

func (s *Server) handleGetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	entry, err := s.board.GetCatalogEntry(id)
	if err != nil {
		s.respondBoardError(w, err, "Failed to fetch catalog entry")
		return
	}
	s.respondJSON(w, http.StatusOK, toCatalogResponse(entry))
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	caller, ok := callerPrincipal(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req voteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	if err := s.board.CastVote(r.Context(), caller, id, req.Score); err != nil {
		s.respondBoardError(w, err, "Failed to process vote")
		return
	}

	s.respondJSON(w, http.StatusCreated, voteResponse{
		RecordID:  string(id),
		Principal: string(caller),
		Score:     req.Score,
	})
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	summary, err := s.board.AverageRating(id)
	if err != nil {
		s.respondBoardError(w, err, "Failed to fetch rating")
		return
	}
	s.respondJSON(w, http.StatusOK, ratingResponse{Average: summary.Average, Votes: summary.Votes})
}

func toCatalogResponse(entry domain.CatalogEntry) catalogResponse {
	resp := catalogResponse{
		ID:       string(entry.ID),
		Title:    entry.Title,
		Synopsis: entry.Synopsis,
		Director: entry.Director,
		Cast:     entry.Cast,
		AddedAt:  entry.AddedAt,
	}
	if entry.Ratings != nil {
		resp.Rating = &ratingResponse{
			Average: entry.Ratings.Average,
			Votes:   entry.Ratings.VoteCount,
		}
	}
	return resp
}
