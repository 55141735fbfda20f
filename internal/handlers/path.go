package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/handlers/render"
)

// pathID parses the named path segment as uuid and renders 404 when it isn't one.
// Non-uuid ids can't match anything, so not found is the honest answer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		render.ServiceError(w, "Not found", http.StatusNotFound)
		return uuid.Nil, false
	}

	return id, true
}
