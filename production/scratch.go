package production

import (
	"log"
	"os"
	"path/filepath"
)

// scratch holds one order's intermediate files. Everything under the
// order's directory is removed when the order finishes, success or not; a
// failed cleanup is logged, never escalated.
type scratch struct {
	dir string // "" = scratch disabled
}

func (p *Producer) openScratch(orderID string) (*scratch, func()) {
	if p.ScratchDir == "" {
		return &scratch{}, func() {}
	}
	dir := filepath.Join(p.ScratchDir, orderID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[WARN] [PRODUCTION] scratch dir unavailable: %v", err)
		return &scratch{}, func() {}
	}
	s := &scratch{dir: dir}
	return s, func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("[WARN] [PRODUCTION] scratch cleanup failed: %v", err)
		}
	}
}

// keep writes one intermediate artifact, best effort.
func (s *scratch) keep(name string, data []byte) {
	if s.dir == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		log.Printf("[WARN] [PRODUCTION] scratch write failed: %v", err)
	}
}
