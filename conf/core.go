package conf

import (
	"context"
	"encoding/json/v2"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zeptools/print-core/printjobs"
	"github.com/zeptools/print-core/printjobs/impls/memory"
	"github.com/zeptools/print-core/printjobs/impls/mysql"
	"github.com/zeptools/print-core/printjobs/impls/pgsql"
	"github.com/zeptools/print-core/printjobs/impls/redis"
	"github.com/zeptools/print-core/schedjobs"
	"github.com/zeptools/print-core/storages"
	"github.com/zeptools/print-core/storages/impls/fsblob"
	"github.com/zeptools/print-core/svc"
	"github.com/zeptools/print-core/throttle"
	"github.com/zeptools/print-core/uds"
	"github.com/zeptools/print-core/web"
)

type DebugOpts struct {
	APIResponses bool `json:"api_responses"` // wrap API payloads with debug info
}

// AgentAuth - shared-secret settings for local agent tokens
type AgentAuth struct {
	Secret      string `json:"secret"`        // HMAC signing secret
	TokenTTLSec int    `json:"token_ttl_sec"` // 0 = tokens without expiry
}

func (a *AgentAuth) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLSec) * time.Second
}

// Core - common config
// B = Throttle BucketID Type _ e.g. string, int64, etc
type Core[B comparable] struct {
	AppName           string    `json:"app_name"`
	Listen            string    `json:"listen"`              // HTTP Server Listen IP:PORT Address
	Host              string    `json:"host"`                // HTTP Host. Can be used to generate public url endpoints
	ScratchDir        string    `json:"scratch_dir"`         // per-order intermediate files, "" = none kept
	AssemblePDF       bool      `json:"assemble_pdf"`        // false = queue raw sheet images instead
	StampProvenance   bool      `json:"stamp_provenance"`    // timestamp strip on outside sheets
	RotateInsideSheet bool      `json:"rotate_inside_sheet"` // for short-edge duplex printers
	DebugOpts         DebugOpts `json:"debug_opts"`          // Debug Options

	AppRoot             string                   `json:"-"` // Filled from compiled paths
	RootCtx             context.Context          `json:"-"` // Global Context with RootCancel
	RootCancel          context.CancelFunc       `json:"-"` // CancelFunc for RootCtx
	UDSService          *uds.Service             `json:"-"` // PrepareUDSService
	JobScheduler        *schedjobs.Scheduler     `json:"-"` // PrepareJobScheduler
	WebService          *web.Service             `json:"-"` // PrepareWebService
	ThrottleBucketStore *throttle.BucketStore[B] `json:"-"` // PrepareThrottleBucketStore
	VolatileKV          *sync.Map                `json:"-"` // map[string]string
	ActionLocks         *sync.Map                `json:"-"` // map[string]struct{}
	AssetHTTPClient     *http.Client             `json:"-"` // for fetching page images from external urls
	JobStoreConf        printjobs.Conf           `json:"-"` // loadJobStoreConf
	JobStore            printjobs.Store          `json:"-"` // PrepareJobStore
	StorageConf         storages.Conf            `json:"-"` // loadStorageConf
	BlobStore           storages.BlobStore       `json:"-"` // PrepareBlobStore
	AgentAuthConf       AgentAuth                `json:"-"` // LoadAgentAuthConf

	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file
// 3. prepare base fields
// 4. Start ShutdownSignalListener
func (c *Core[B]) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	envFilePath := filepath.Join(appRoot, "config", ".core.json")
	envBytes, err := os.ReadFile(envFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(envBytes, c); err != nil {
		return err
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.prepareDefaultFeatures()
	c.startShutdownSignalListener()
	return nil
}

func (c *Core[B]) prepareDefaultFeatures() {
	c.VolatileKV = &sync.Map{}
	c.ActionLocks = &sync.Map{}
	c.AssetHTTPClient = &http.Client{Timeout: 30 * time.Second}
}

func (c *Core[B]) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core[B]) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s) // pass the loop var to the param. otherwise, they are captured inside goroutine lazily
	}
	return nil
}

func (c *Core[B]) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core[B]) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core[B]) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

func (c *Core[B]) PrepareJobScheduler() {
	c.JobScheduler = schedjobs.NewScheduler(c.RootCtx)
	c.AddService(c.JobScheduler)
}

func (c *Core[B]) PrepareUDSService(sockPath string, cmdMap map[string]uds.CmdHnd) {
	c.UDSService = uds.NewService(c.RootCtx, sockPath, cmdMap)
	c.AddService(c.UDSService)
}

func (c *Core[B]) PrepareWebService(addr string, router http.Handler) {
	c.WebService = web.NewService(c.RootCtx, addr, router)
	c.AddService(c.WebService)
}

func (c *Core[B]) PrepareThrottleBucketStore(cleanupCycle time.Duration, cleanupOlderThan time.Duration) {
	c.ThrottleBucketStore = throttle.NewBucketStore[B](c.RootCtx, cleanupCycle, cleanupOlderThan)
	c.AddService(c.ThrottleBucketStore)
}

// PrepareJobStore builds and initializes the configured job store backend
func (c *Core[B]) PrepareJobStore() error {
	if err := c.loadJobStoreConf(); err != nil {
		return err
	}

	// Registering Supported Implementations
	memory.Register()
	pgsql.Register()
	mysql.Register()
	redis.Register()

	store, err := printjobs.New(c.JobStoreConf.Type, &c.JobStoreConf)
	if err != nil {
		return err
	}
	if err = store.Init(); err != nil {
		return err
	}
	c.JobStore = store
	return nil
}

func (c *Core[B]) loadJobStoreConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".job-store.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.JobStoreConf); err != nil {
		return err
	}
	return nil
}

// PrepareBlobStore builds and initializes the configured artifact store
func (c *Core[B]) PrepareBlobStore() error {
	if err := c.loadStorageConf(); err != nil {
		return err
	}

	// Registering Supported Implementations
	fsblob.Register()

	store, err := storages.New(&c.StorageConf)
	if err != nil {
		return err
	}
	if err = store.Init(); err != nil {
		return err
	}
	c.BlobStore = store
	return nil
}

func (c *Core[B]) loadStorageConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".storages.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.StorageConf); err != nil {
		return err
	}
	return nil
}

func (c *Core[B]) LoadAgentAuthConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".agents.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.AgentAuthConf); err != nil {
		return err
	}
	return nil
}

func (c *Core[B]) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.JobStore != nil {
		storeType := c.JobStore.GetConf().Type
		if err := c.JobStore.Close(); err != nil {
			log.Printf("[ERROR][%s] Failed to close job store", storeType)
		} else {
			log.Printf("[INFO][%s] job store closed", storeType)
		}
	}
	if c.BlobStore != nil {
		if err := c.BlobStore.Close(); err != nil {
			log.Println("[ERROR] Failed to close blob store")
		}
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
