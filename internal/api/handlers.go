package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kinfolk/internal/checksum"
	"github.com/starford/kinfolk/internal/familyservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *familyservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *familyservice.Service) *Handler {
	return &Handler{svc: svc}
}

// personID parses the {id} URL parameter.
func personID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeForm(w http.ResponseWriter, r *http.Request) (PersonRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	return req, true
}

// ListPersons handles GET /api/persons.
//
//	@Summary		List persons without relations
//	@Tags			persons
//	@Produce		json
//	@Param			sort	query	string	false	"Sort order"	Enums(id, name)
//	@Success		200		{array}	models.Person
//	@Security		BearerAuth
//	@Router			/persons [get]
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy != "" && sortBy != familyservice.SortByID && sortBy != familyservice.SortByName {
		writeJSON(w, http.StatusBadRequest, errorBody("sort must be id or name"))
		return
	}
	persons, err := h.svc.ListPersons(r.Context(), sortBy)
	if err != nil {
		writeError(w, "list persons", err)
		return
	}
	writeJSON(w, http.StatusOK, persons)
}

// GetPerson handles GET /api/persons/{id}.
//
//	@Summary		Get a person with derived parents, children and spouses
//	@Tags			persons
//	@Produce		json
//	@Param			id	path		int	true	"Person id"
//	@Success		200	{object}	PersonDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/persons/{id} [get]
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid person id"))
		return
	}
	m, err := h.svc.GetMember(r.Context(), id)
	if err != nil {
		writeError(w, "get person", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreatePerson handles POST /api/persons.
//
//	@Summary		Create a person and its relationships
//	@Tags			persons
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PersonRequest	true	"Person to create"
//	@Success		201		{object}	PersonDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/persons [post]
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeForm(w, r)
	if !ok {
		return
	}
	m, err := h.svc.AddPerson(r.Context(), req)
	if err != nil {
		writeError(w, "create person", err)
		return
	}
	w.Header().Set("Location", "/api/persons/"+strconv.FormatInt(m.ID, 10))
	writeJSON(w, http.StatusCreated, m)
}

// UpdatePerson handles PUT /api/persons/{id}.
//
//	@Summary		Replace a person's fields and relationships
//	@Tags			persons
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Person id"
//	@Param			body	body		PersonRequest	true	"New person state"
//	@Success		200		{object}	PersonDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/persons/{id} [put]
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid person id"))
		return
	}
	req, ok := decodeForm(w, r)
	if !ok {
		return
	}
	m, err := h.svc.EditPerson(r.Context(), id, req)
	if err != nil {
		writeError(w, "update person", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeletePerson handles DELETE /api/persons/{id}.
//
//	@Summary		Delete a person and every relationship touching it
//	@Tags			persons
//	@Param			id	path	int	true	"Person id"
//	@Success		204	"Person deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/persons/{id} [delete]
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid person id"))
		return
	}
	if err := h.svc.DeletePerson(r.Context(), id); err != nil {
		writeError(w, "delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRelationships handles GET /api/relationships.
//
//	@Summary		List stored relationship edges
//	@Tags			relationships
//	@Produce		json
//	@Success		200	{array}	models.Relationship
//	@Security		BearerAuth
//	@Router			/relationships [get]
func (h *Handler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := h.svc.ListRelationships(r.Context())
	if err != nil {
		writeError(w, "list relationships", err)
		return
	}
	writeJSON(w, http.StatusOK, rels)
}

// Tree handles GET /api/tree.
//
//	@Summary		Get the flattened family tree
//	@Tags			tree
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"ETag of a previously fetched tree"
//	@Success		200				{object}	TreeResponse
//	@Success		304				"Tree unchanged"
//	@Failure		404				{object}	errResponse
//	@Failure		409				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Tree(r.Context())
	if err != nil {
		if errors.Is(err, familyservice.ErrNoRoot) {
			writeJSON(w, http.StatusNotFound, errorBody("no root"))
			return
		}
		writeError(w, "build tree", err)
		return
	}
	body, err := json.Marshal(view)
	if err != nil {
		writeError(w, "encode tree", err)
		return
	}
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if checksum.Matches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// Roots handles GET /api/tree/roots.
//
//	@Summary		List root candidates, ascending
//	@Tags			tree
//	@Produce		json
//	@Success		200	{object}	RootsResponse
//	@Security		BearerAuth
//	@Router			/tree/roots [get]
func (h *Handler) Roots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.svc.Roots(r.Context())
	if err != nil {
		writeError(w, "list roots", err)
		return
	}
	if roots == nil {
		roots = []int64{}
	}
	writeJSON(w, http.StatusOK, RootsResponse{Roots: roots})
}
