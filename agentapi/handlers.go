package agentapi

import (
	"encoding/json/v2"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/zeptools/print-core/dbg"
	"github.com/zeptools/print-core/locks/keyonlylocks"
	"github.com/zeptools/print-core/printjobs"
	"github.com/zeptools/print-core/production"
	"github.com/zeptools/print-core/responses"
)

// Handlers - the local-agent protocol plus the submission endpoints.
// Coordination is pull-based: the cloud cannot reach an agent behind the
// user's network, so agents poll the list, claim jobs and report back.
type Handlers struct {
	Jobs     printjobs.Store
	Producer *production.Producer

	// per-job action locks, key = "job:"+id
	jobLocks sync.Map

	// Debug wraps list payloads with debug data
	Debug bool
}

//---- Submission ----

func (h *Handlers) SubmitCard(w http.ResponseWriter, r *http.Request) {
	var req production.CardRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}
	id, err := h.Producer.ProduceCard(r.Context(), &req)
	if err != nil {
		if verr := req.Validate(); verr != nil {
			responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, verr.Error())
			return
		}
		log.Printf("[ERROR] [AGENTAPI] card production failed: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "production failed")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusCreated, map[string]string{"job_id": id})
}

func (h *Handlers) SubmitStickers(w http.ResponseWriter, r *http.Request) {
	var req production.StickerRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}
	id, err := h.Producer.ProduceStickers(r.Context(), &req)
	if err != nil {
		if verr := req.Validate(h.Producer.Grid.SlotCount()); verr != nil {
			responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, verr.Error())
			return
		}
		log.Printf("[ERROR] [AGENTAPI] sticker production failed: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "production failed")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusCreated, map[string]string{"job_id": id})
}

//---- Agent Protocol ----

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.List(r.Context())
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] list jobs: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	if jobs == nil {
		jobs = []*printjobs.PrintJob{} // empty list, not null
	}
	if h.Debug {
		responses.EncodeWriteJSON(w, http.StatusOK, dbg.Pack(jobs))
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, jobs)
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, printjobs.ErrNotFound) {
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] get job: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, job)
}

// ClaimJob is the agent's compare-and-swap from pending to processing.
// Exactly one of two concurrent claimers wins; the loser gets 409.
func (h *Handlers) ClaimJob(w http.ResponseWriter, r *http.Request) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "no agent identity")
		return
	}
	id := r.PathValue("id")
	lockKeys := []string{"job:" + id}
	acquired, ok := keyonlylocks.AcquireLocks(&h.jobLocks, lockKeys)
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusConflict, "job busy, retry")
		return
	}
	defer keyonlylocks.ReleaseLocks(&h.jobLocks, acquired)

	won, err := h.Jobs.Claim(r.Context(), id, agentID)
	if errors.Is(err, printjobs.ErrNotFound) {
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] claim job: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	if !won {
		responses.WriteSimpleErrorJSON(w, http.StatusConflict, "job is not pending")
		return
	}
	job, err := h.Jobs.Get(r.Context(), id)
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] reload claimed job: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, job)
}

type statusReportBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *Handlers) ReportStatus(w http.ResponseWriter, r *http.Request) {
	var body statusReportBody
	if err := json.UnmarshalRead(r.Body, &body); err != nil {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "malformed request body")
		return
	}
	status := printjobs.Status(body.Status)
	if !status.Known() {
		responses.WriteSimpleErrorJSON(w, http.StatusBadRequest, "unknown status")
		return
	}
	id := r.PathValue("id")
	lockKeys := []string{"job:" + id}
	acquired, ok := keyonlylocks.AcquireLocks(&h.jobLocks, lockKeys)
	if !ok {
		responses.WriteSimpleErrorJSON(w, http.StatusConflict, "job busy, retry")
		return
	}
	defer keyonlylocks.ReleaseLocks(&h.jobLocks, acquired)

	err := h.Jobs.SetStatus(r.Context(), id, status, body.Error)
	if errors.Is(err, printjobs.ErrNotFound) {
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "job not found")
		return
	}
	if errors.Is(err, printjobs.ErrBadTransition) {
		responses.WriteSimpleErrorJSON(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] set status: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, responses.Message{Type: "ok", Message: "status updated"})
}

//---- Operator ----

func (h *Handlers) ClearFinished(w http.ResponseWriter, r *http.Request) {
	resetStuck := r.URL.Query().Get("reset_stuck") == "1"
	n, err := h.Jobs.ClearFinished(r.Context(), resetStuck)
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] clear finished: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, map[string]int{"affected": n})
}

func (h *Handlers) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.Jobs.ClearAll(r.Context())
	if err != nil {
		log.Printf("[ERROR] [AGENTAPI] clear all: %v", err)
		responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "job store unavailable")
		return
	}
	log.Printf("[WARN] [AGENTAPI] all jobs cleared (%d removed)", n)
	responses.EncodeWriteJSON(w, http.StatusOK, map[string]int{"removed": n})
}
