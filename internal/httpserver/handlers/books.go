package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

const maxBodyBytes = 64 << 10

type patchResponse struct {
	Changed bool         `json:"changed"`
	Book    bookResponse `json:"book"`
}

// ListBooks returns every book, most recently added first.
func ListBooks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, toResponses(d.Library.List()))
	}
}

func GetBook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r, d)
		if !ok {
			return
		}
		b, found := d.Library.Get(id)
		if !found {
			writeError(w, d.Logger, http.StatusNotFound, "book not found")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, toResponse(b))
	}
}

// AddBook validates a draft and stores it at the front of the list.
func AddBook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.Draft
		if !decodeBody(w, r, d, &draft) {
			return
		}

		if err := domain.ValidateDraft(draft); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, d.Logger, http.StatusUnprocessableEntity, errorResponse{
					Error:  "invalid book",
					Fields: verr.Fields,
				})
				return
			}
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
			return
		}

		b := d.Library.Add(r.Context(), draft)
		d.Logger.Info("book added",
			logger.Int("id", b.ID),
			logger.String("title", b.Title))
		writeJSON(w, d.Logger, http.StatusCreated, toResponse(b))
	}
}

// UpdateBook applies a partial update. An update that changes nothing
// still answers 200 with changed=false.
func UpdateBook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r, d)
		if !ok {
			return
		}

		var patch domain.Patch
		if !decodeBody(w, r, d, &patch) {
			return
		}

		changed := d.Library.Update(r.Context(), id, patch)
		b, found := d.Library.Get(id)
		if !found {
			writeError(w, d.Logger, http.StatusNotFound, "book not found")
			return
		}
		if changed {
			d.Logger.Info("book updated", logger.Int("id", id))
		}
		writeJSON(w, d.Logger, http.StatusOK, patchResponse{Changed: changed, Book: toResponse(b)})
	}
}

func ToggleBook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r, d)
		if !ok {
			return
		}
		b, found := d.Library.Toggle(r.Context(), id)
		if !found {
			writeError(w, d.Logger, http.StatusNotFound, "book not found")
			return
		}
		d.Logger.Info("book status toggled",
			logger.Int("id", id),
			logger.String("status", b.Status.String()))
		writeJSON(w, d.Logger, http.StatusOK, toResponse(b))
	}
}

func RemoveBook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := bookID(w, r, d)
		if !ok {
			return
		}
		if !d.Library.Remove(r.Context(), id) {
			writeError(w, d.Logger, http.StatusNotFound, "book not found")
			return
		}
		d.Logger.Info("book removed", logger.Int("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func bookID(w http.ResponseWriter, r *http.Request, d deps.Deps) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		writeError(w, d.Logger, http.StatusBadRequest, "invalid book id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, d deps.Deps, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, d.Logger, http.StatusBadRequest, "empty request body")
			return false
		}
		writeError(w, d.Logger, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
