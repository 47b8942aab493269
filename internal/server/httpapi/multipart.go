package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/server/services"
)

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		return fmt.Errorf("%w: multipart form: %v", common.ErrValidation, err)
	}
	return nil
}

// formJSON decodes the JSON document carried in the multipart field name.
func formJSON(r *http.Request, name string, dst any) error {
	raw := r.FormValue(name)
	if raw == "" {
		return errMissing(name)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: field %q: %v", common.ErrValidation, name, err)
	}
	return nil
}

// formFile returns the optional file part name as an upload. The returned
// func closes it and is safe to call when there was no file.
func formFile(r *http.Request, name string) (*services.Upload, func(), error) {
	f, hdr, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: file %q: %v", common.ErrValidation, name, err)
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &services.Upload{Body: f, Size: hdr.Size, ContentType: ct}, func() { _ = f.Close() }, nil
}

func errMissing(field string) error {
	return fmt.Errorf("%w: field %q is required", common.ErrValidation, field)
}
