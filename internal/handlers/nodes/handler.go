package nodes

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/camfleet.net/internal/core/services/registry"
	"gitlab.com/camfleet.net/internal/handlers/response"
)

type ApiHandler struct {
	Registry registry.INodeRegistryService
}

func NewHandler(reg registry.INodeRegistryService) *ApiHandler {
	return &ApiHandler{
		Registry: reg,
	}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/nodes", api.GetNodes).Methods("GET")
}

// GetNodes returns the registry snapshot with derived liveness status.
func (api *ApiHandler) GetNodes(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, api.Registry.Snapshot())
}
