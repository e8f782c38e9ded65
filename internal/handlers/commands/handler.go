// package commands exposes the controller's fleet operations over the
// admin API: broadcast and unicast capture/list/upload/delete.
package commands

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/camfleet.net/internal/core/ports/primary"
	"gitlab.com/camfleet.net/internal/core/ports/secondary"
	"gitlab.com/camfleet.net/internal/core/services/dispatch"
	"gitlab.com/camfleet.net/internal/handlers/response"
	"gitlab.com/camfleet.net/internal/tcp/defs"
	tcphandlers "gitlab.com/camfleet.net/internal/tcp/handlers"
)

// BucketTimestampLayout names upload buckets camera-captures-<yyyy-mmdd-hhmm>.
const BucketTimestampLayout = "2006-0102-1504"

type ApiHandler struct {
	Dispatcher dispatch.ICommandDispatchService
	AuditLog   secondary.DispatchLogRepository
	Logger     primary.Logger
}

func NewHandler(dispatcher dispatch.ICommandDispatchService, auditLog secondary.DispatchLogRepository, logger primary.Logger) *ApiHandler {
	return &ApiHandler{
		Dispatcher: dispatcher,
		AuditLog:   auditLog,
		Logger:     logger,
	}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/commands/capture", api.BroadcastCommand(api.captureMessage)).Methods("POST")
	r.HandleFunc("/api/commands/list", api.BroadcastCommand(api.listMessage)).Methods("POST")
	r.HandleFunc("/api/commands/upload", api.BroadcastCommand(api.uploadMessage)).Methods("POST")
	r.HandleFunc("/api/commands/delete", api.BroadcastCommand(api.deleteMessage)).Methods("POST")
	r.HandleFunc("/api/commands/{hostname}/capture", api.UnicastCapture).Methods("POST")
	if api.AuditLog != nil {
		r.HandleFunc("/api/dispatches", api.GetDispatches).Methods("GET")
	}
}

// BroadcastCommand fans the built message out to every registered node
// and returns the per-node result mapping.
func (api *ApiHandler) BroadcastCommand(build func(r *http.Request) (*defs.Message, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := build(r)
		if err != nil {
			response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
			return
		}

		api.Logger.Info("Broadcasting command", "kind", msg.Kind)
		results := api.Dispatcher.Broadcast(r.Context(), msg)
		response.WriteSuccess(w, results)
	}
}

// UnicastCapture sends a CAPTURE command to one node.
func (api *ApiHandler) UnicastCapture(w http.ResponseWriter, r *http.Request) {
	hostname := mux.Vars(r)["hostname"]
	msg, err := api.captureMessage(r)
	if err != nil {
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
		return
	}

	api.Logger.Info("Dispatching command", "kind", msg.Kind, "hostname", hostname)
	response.WriteSuccess(w, api.Dispatcher.Unicast(r.Context(), hostname, msg))
}

// GetDispatches returns recent dispatch outcomes from the audit log.
func (api *ApiHandler) GetDispatches(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.WriteError(w, response.ErrorMessage{Message: "invalid limit", StatusCode: http.StatusBadRequest})
			return
		}
		limit = parsed
	}

	records, err := api.AuditLog.RecentRecords(r.Context(), limit)
	if err != nil {
		api.Logger.Error("Failed to load dispatch records", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to load dispatch records", StatusCode: http.StatusInternalServerError})
		return
	}
	response.WriteSuccess(w, records)
}

func (api *ApiHandler) captureMessage(r *http.Request) (*defs.Message, error) {
	timestamp := time.Now().Format(tcphandlers.CaptureTimestampLayout)
	return defs.NewMessage(defs.KindCapture, defs.CaptureData{Timestamp: timestamp})
}

func (api *ApiHandler) listMessage(r *http.Request) (*defs.Message, error) {
	return defs.NewMessage(defs.KindListImages, nil)
}

func (api *ApiHandler) uploadMessage(r *http.Request) (*defs.Message, error) {
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		bucket = fmt.Sprintf("camera-captures-%s", time.Now().Format(BucketTimestampLayout))
	}
	return defs.NewMessage(defs.KindUploadS3, defs.UploadS3Data{BucketName: bucket})
}

func (api *ApiHandler) deleteMessage(r *http.Request) (*defs.Message, error) {
	return defs.NewMessage(defs.KindDeleteImages, nil)
}
