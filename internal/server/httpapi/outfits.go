package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

func (h *Handler) postOutfit(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	var outfit models.Outfit
	if err := formJSON(r, "outfit", &outfit); err != nil {
		h.writeError(w, r, err)
		return
	}
	pic, closePic, err := formFile(r, "image")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer closePic()

	saved, err := h.outfits.Create(r.Context(), Username(r.Context()), &outfit, pic)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: saved.ID})
}

func (h *Handler) listOutfits(w http.ResponseWriter, r *http.Request) {
	outfits, err := h.outfits.List(r.Context(), Username(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outfits)
}
