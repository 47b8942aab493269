package httpapi

import (
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

type idResponse struct {
	ID string `json:"id"`
}

type fieldSearch struct {
	Username string `json:"username"`
	Field    string `json:"field"`
	Keyword  string `json:"keyword"`
}

func (f *fieldSearch) fromForm(v url.Values) {
	f.Username, f.Field, f.Keyword = v.Get("username"), v.Get("field"), v.Get("keyword")
}

type importResponse struct {
	Imported int `json:"imported"`
}

func (h *Handler) postItem(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	var item models.Item
	if err := formJSON(r, "item", &item); err != nil {
		h.writeError(w, r, err)
		return
	}
	pic, closePic, err := formFile(r, "image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer closePic()

	saved, err := h.items.Create(r.Context(), Username(r.Context()), &item, pic)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: saved.ID})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.items.Get(r.Context(), Username(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context(), Username(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) searchField(w http.ResponseWriter, r *http.Request) {
	var req fieldSearch
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := bodyUser(r, req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.items.FilterByField(r.Context(), username, req.Field, req.Keyword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) searchAll(w http.ResponseWriter, r *http.Request) {
	keyword, err := pathVar(r, "keyword")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, err := h.items.Search(r.Context(), Username(r.Context()), keyword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	wb, closeWB, err := formFile(r, "workbook")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer closeWB()
	if wb == nil {
		h.writeError(w, r, errMissing("workbook"))
		return
	}

	n, err := h.items.Import(r.Context(), Username(r.Context()), wb.Body, r.FormValue("sheet"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}
