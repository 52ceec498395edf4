package agentapi

import (
	"github.com/zeptools/print-core/routing"
)

// RegisterRoutes mounts the protocol under /print-jobs/.
// Submission is throttled per client IP; everything touching existing jobs
// requires an agent token.
func RegisterRoutes(
	router routing.Router,
	h *Handlers,
	auth *AgentAuthWrapper,
	submitThrottle routing.HandlerWrapper,
) {
	router.HandleFunc("POST /print-jobs", h.SubmitCard, submitThrottle)
	router.HandleFunc("POST /print-jobs/stickers", h.SubmitStickers, submitThrottle)

	router.HandleFunc("GET /print-jobs", h.ListJobs, auth)
	router.HandleFunc("GET /print-jobs/{id}", h.GetJob, auth)
	router.HandleFunc("POST /print-jobs/{id}/claim", h.ClaimJob, auth)
	router.HandleFunc("PUT /print-jobs/{id}/status", h.ReportStatus, auth)

	router.HandleFunc("DELETE /print-jobs/finished", h.ClearFinished, auth)
	router.HandleFunc("DELETE /print-jobs", h.ClearAll, auth)
}
