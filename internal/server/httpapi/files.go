package httpapi

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/dmitrijs2005/apparel/internal/common"
	"github.com/dmitrijs2005/apparel/internal/filex"
)

// filenames lists the files of a directory under the public asset root.
func (h *Handler) filenames(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "dir")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	dir, err := filex.SafeJoin(h.opts.PublicDir, name)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", common.ErrValidation, err))
		return
	}
	names, err := filex.ListFiles(dir)
	if errors.Is(err, fs.ErrNotExist) {
		h.writeError(w, r, common.ErrorNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}
