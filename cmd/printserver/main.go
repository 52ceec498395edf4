package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/zeptools/print-core/admin"
	"github.com/zeptools/print-core/agentapi"
	"github.com/zeptools/print-core/conf"
	"github.com/zeptools/print-core/geometry"
	gofpdfimpl "github.com/zeptools/print-core/pdfs/impls/gofpdf"
	"github.com/zeptools/print-core/printjobs"
	"github.com/zeptools/print-core/production"
	"github.com/zeptools/print-core/responses"
	"github.com/zeptools/print-core/routing"
	"github.com/zeptools/print-core/schedjobs"
	"github.com/zeptools/print-core/storages/impls/fsblob"
	"github.com/zeptools/print-core/throttle"
)

// submission throttle: per client IP, refilled once a minute
const submitThrottleGroup = "job-submit"

func main() {
	if err := run(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func run() error {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	appRoot, err := os.Getwd()
	if err != nil {
		return err
	}
	if len(os.Args) > 1 {
		appRoot = os.Args[1]
	}

	core := &conf.Core[string]{}
	if err = core.BaseInit(appRoot, rootCtx, rootCancel); err != nil {
		return err
	}
	defer core.ResourceCleanUp()

	if err = core.PrepareJobStore(); err != nil {
		return err
	}
	if err = core.PrepareBlobStore(); err != nil {
		return err
	}
	if err = core.LoadAgentAuthConf(); err != nil {
		return err
	}

	gofpdfimpl.Register()
	producer := &production.Producer{
		Spec:              geometry.HalfFoldLetter,
		Grid:              geometry.LetterStickerGrid,
		Jobs:              core.JobStore,
		Blob:              core.BlobStore,
		Assets:            &production.HTTPFetcher{Client: core.AssetHTTPClient},
		AssemblePDF:       core.AssemblePDF,
		StampProvenance:   core.StampProvenance,
		RotateInsideSheet: core.RotateInsideSheet,
		ScratchDir:        core.ScratchDir,
	}

	core.PrepareThrottleBucketStore(10*time.Minute, time.Hour)
	core.ThrottleBucketStore.SetBucketGroup(submitThrottleGroup, &throttle.BucketConf{
		Burst:     30,
		Increment: 30,
		Period:    time.Minute,
	})

	core.PrepareJobScheduler()
	core.JobScheduler.AddCronJob(newLeaseSweepJob(core.RootCtx, core.JobStore))

	handlers := &agentapi.Handlers{
		Jobs:     core.JobStore,
		Producer: producer,
		Debug:    core.DebugOpts.APIResponses,
	}
	auth := &agentapi.AgentAuthWrapper{Secret: []byte(core.AgentAuthConf.Secret)}
	submitThrottle := &agentapi.ThrottleWrapper{
		Store:   core.ThrottleBucketStore,
		GroupID: submitThrottleGroup,
	}

	router := &routing.BaseRouter{ServeMux: http.NewServeMux()}
	agentapi.RegisterRoutes(router, handlers, auth, submitThrottle)
	if fs, ok := core.BlobStore.(*fsblob.Store); ok {
		router.Handle("GET /files/", http.StripPrefix("/files", fs.Handler()))
	}
	if core.DebugOpts.APIResponses {
		router.Handle("/debug/echo", &responses.EchoHandler{MaxMemoryMB: 8})
	}
	core.PrepareWebService(core.Listen, routing.RecoverWrapper(router.ServeMux))

	cmdMap := admin.MergeCommandMaps(
		admin.NewJobCommandMap(core.RootCtx, core.JobStore),
		admin.NewAgentCommandMap([]byte(core.AgentAuthConf.Secret), core.AgentAuthConf.TokenTTL()),
	)
	core.PrepareUDSService(filepath.Join(appRoot, core.AppName+".sock"), cmdMap)

	if err = core.StartServices(); err != nil {
		core.StopServices()
		return err
	}
	log.Printf("[INFO] app [%s] is up", core.AppName)
	if err = core.WaitServicesDone(); err != nil {
		core.StopServices()
		return err
	}
	return nil
}

// newLeaseSweepJob reverts processing jobs with lapsed leases every minute,
// so work claimed by a crashed agent becomes claimable again.
func newLeaseSweepJob(ctx context.Context, jobs printjobs.Store) *schedjobs.CronJob {
	job := schedjobs.NewEveryMinEmptyCronJob("lease-sweep")
	job.Task = func() error {
		sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		n, err := jobs.ReapExpired(sweepCtx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("[INFO][SWEEP] %d expired lease(s) reverted to pending", n)
		}
		return nil
	}
	return job
}
