package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON value from r into dst. Syntax and type
// errors are reported as validation failures.
func decodeJSON(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// formRequest is a request body that can also arrive form-encoded.
type formRequest interface {
	fromForm(v url.Values)
}

// decodeBody reads a form-encoded body when the request is labelled as one
// and JSON otherwise.
func decodeBody(r *http.Request, dst formRequest) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/x-www-form-urlencoded" {
		return decodeJSON(r.Body, dst)
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	dst.fromForm(r.PostForm)
	return nil
}

// pathVar returns the decoded route variable name. Routes match on the
// escaped path, so an encoded slash stays inside one variable.
func pathVar(r *http.Request, name string) (string, error) {
	v, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil {
		return "", fmt.Errorf("%w: path %s: %v", common.ErrValidation, name, err)
	}
	return v, nil
}
