package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/perch-labs/noticeboard/internal/domain"
)

type noteCreateRequest struct {
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	ReferenceID *string `json:"referenceId"`
}

type noteResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ReferenceID *string   `json:"referenceId,omitempty"`
	Author      string    `json:"author"`
	PostedAt    time.Time `json:"postedAt"`
}

type transferRequest struct {
	NewHolder string `json:"newHolder"`
}

type transferResponse struct {
	Holder string `json:"holder"`
}

func (s *Server) handlePostNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerPrincipal(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req noteCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	var id domain.ID
	var err error
	if req.ReferenceID != nil && strings.TrimSpace(*req.ReferenceID) != "" {
		id, err = s.board.PostNoteWithReference(r.Context(), caller, req.Title, req.Body, domain.ID(strings.TrimSpace(*req.ReferenceID)))
	} else {
		id, err = s.board.PostNote(r.Context(), caller, req.Title, req.Body)
	}
	if err != nil {
		s.respondBoardError(w, err, "Failed to post note")
		return
	}

	note, err := s.board.ReadNote(id)
	if err != nil {
		s.respondBoardError(w, err, "Failed to post note")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/notes/%s", url.PathEscape(string(id))))
	s.respondJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (s *Server) handlePostAdminNote(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	caller, ok := callerPrincipal(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req noteCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	var id domain.ID
	var err error
	if req.ReferenceID != nil && strings.TrimSpace(*req.ReferenceID) != "" {
		id, err = s.board.PostAdminNoteWithReference(r.Context(), caller, req.Title, req.Body, domain.ID(strings.TrimSpace(*req.ReferenceID)))
	} else {
		id, err = s.board.PostAdminNote(r.Context(), caller, req.Title, req.Body)
	}
	if err != nil {
		s.respondBoardError(w, err, "Failed to post admin note")
		return
	}

	note, err := s.board.ReadNote(id)
	if err != nil {
		s.respondBoardError(w, err, "Failed to post admin note")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/notes/%s", url.PathEscape(string(id))))
	s.respondJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (s *Server) handleReadNote(w http.ResponseWriter, r *http.Request) {
	id, err := decodeIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	note, err := s.board.ReadNote(id)
	if err != nil {
		s.respondBoardError(w, err, "Failed to read note")
		return
	}
	s.respondJSON(w, http.StatusOK, toNoteResponse(note))
}

func (s *Server) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}
	caller, ok := callerPrincipal(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req transferRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	newHolder := strings.TrimSpace(req.NewHolder)
	if newHolder == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "newHolder is required")
		return
	}

	if err := s.board.TransferAdmin(r.Context(), caller, domain.Principal(newHolder)); err != nil {
		s.respondBoardError(w, err, "Failed to transfer admin capability")
		return
	}
	s.respondJSON(w, http.StatusOK, transferResponse{Holder: newHolder})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	limit := 50
	if val := strings.TrimSpace(r.URL.Query().Get("limit")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid limit value")
			return
		}
		limit = parsed
	}

	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Printf("list journal error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list events")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func toNoteResponse(note domain.Note) noteResponse {
	resp := noteResponse{
		ID:       string(note.ID),
		Title:    note.Title,
		Body:     note.Body,
		Author:   string(note.Author),
		PostedAt: note.PostedAt,
	}
	if note.Reference != nil {
		ref := string(*note.Reference)
		resp.ReferenceID = &ref
	}
	return resp
}
