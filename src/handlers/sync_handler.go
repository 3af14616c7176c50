package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/services"
	"github.com/username/dealsync/src/utils"
)

type SyncHandler struct {
	syncService   services.SyncService
	defaultDryRun bool
}

func NewSyncHandler(syncService services.SyncService, defaultDryRun bool) *SyncHandler {
	return &SyncHandler{
		syncService:   syncService,
		defaultDryRun: defaultDryRun,
	}
}

// HandleRunSync triggers a sync run. The configured dry-run mode applies
// unless overridden with the dry_run query parameter.
func (h *SyncHandler) HandleRunSync(w http.ResponseWriter, r *http.Request) {
	dryRun := h.defaultDryRun
	if raw := r.URL.Query().Get("dry_run"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("invalid dry_run value %q", raw), http.StatusBadRequest)
			return
		}
		dryRun = parsed
	}

	report, err := h.syncService.Run(dryRun)
	if err != nil {
		logger.L.Error("Sync run failed", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("sync run failed: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleGetLastReport returns the most recent sync report, if any run has
// completed since startup.
func (h *SyncHandler) HandleGetLastReport(w http.ResponseWriter, r *http.Request) {
	report, found := h.syncService.LastReport()
	if !found {
		utils.SendJSONError(w, "no sync run recorded yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleHealth is the unauthenticated liveness probe.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
