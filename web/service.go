package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/zeptools/print-core/svc"
)

const shutdownGrace = 10 * time.Second

type Service struct {
	Ctx    context.Context    // Service Context
	cancel context.CancelFunc // Service Context CancelFunc
	state  int                // internal service state
	done   chan error         // Shutdown Error Channel
	Server *http.Server
}

// Ensure web.Service implements svc.Service interface
var _ svc.Service = (*Service)(nil)

func (s *Service) Name() string {
	return "WebService"
}

func NewService(parentCtx context.Context, addr string, router http.Handler) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:    svcCtx,
		cancel: svcCancel,
		state:  svc.StateREADY,
		done:   make(chan error, 1),
		Server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

// Start the http server in the background.
// Bootstrapping errors are returned immediately.
// Runtime errors are pushed into Done().
func (s *Service) Start() error {
	if s.state == svc.StateRUNNING {
		return fmt.Errorf("already started")
	}
	if s.state != svc.StateREADY {
		return fmt.Errorf("cannot start. not ready")
	}
	s.state = svc.StateRUNNING
	go s.run()
	return nil
}

func (s *Service) Stop() {
	if s.state != svc.StateRUNNING {
		log.Println("[ERROR][WEB] cannot stop. not running")
		return
	}
	s.cancel()
	s.state = svc.StateSTOPPED
	log.Println("[INFO][WEB] service stopped")
}

func (s *Service) Done() <-chan error {
	return s.done
}

func (s *Service) run() {
	// goroutine for graceful shutdown when context is done
	go func() {
		<-s.Ctx.Done()
		log.Println("[INFO][WEB] stopping")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := s.Server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR][WEB] shutdown: %v", err)
		}
	}()

	log.Printf("[INFO][WEB] listening on %q ...", s.Server.Addr)
	err := s.Server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil // clean shutdown
	}
	s.done <- err
}
