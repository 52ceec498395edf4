package printjobs

import (
	"time"

	"github.com/zeptools/print-core/nullable"
)

// Artifact - what the local agent fetches and prints. Either a single
// assembled document URL (preferred) or raw sheet image URLs (legacy
// fallback). Both must be reachable by plain HTTP from the agent's network.
type Artifact struct {
	DocumentURL string   `json:"document_url,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
}

func (a Artifact) Empty() bool {
	return a.DocumentURL == "" && len(a.ImageURLs) == 0
}

// PrintJob - the unit of work handed to a local agent.
// Owned by the Store after submission; mutated only through explicit
// status-transition calls, never by direct field writes from call sites.
type PrintJob struct {
	ID          string       `json:"id"`
	PrinterName string       `json:"printer_name"`
	PaperSize   string       `json:"paper_size,omitempty"`
	PaperType   string       `json:"paper_type,omitempty"`
	TrayNumber  nullable.Int `json:"tray_number"`

	Artifact Artifact `json:"artifact"`

	Status Status          `json:"status"`
	Error  nullable.String `json:"error"`

	// claim bookkeeping: which agent holds the job and until when
	ClaimedBy      nullable.String `json:"claimed_by"`
	LeaseExpiresAt nullable.Time   `json:"lease_expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID implements orm.Identifiable for collection storage.
func (j *PrintJob) GetID() string {
	return j.ID
}

// Clone returns an independent copy so store internals never leak
// mutable state to callers.
func (j *PrintJob) Clone() *PrintJob {
	c := *j
	if j.Artifact.ImageURLs != nil {
		c.Artifact.ImageURLs = append([]string(nil), j.Artifact.ImageURLs...)
	}
	return &c
}

// LeaseExpired reports whether a processing job's lease has lapsed and the
// job should revert to pending.
func LeaseExpired(j *PrintJob, now time.Time) bool {
	return j.Status == StatusProcessing && j.LeaseExpiresAt.Valid && now.After(j.LeaseExpiresAt.Time)
}
