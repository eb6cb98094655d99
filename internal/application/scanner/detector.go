package scanner

import (
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// Detector clasifica snapshots contra los umbrales configurados.
// Sin efectos secundarios: el registro de observadas y la ejecución los
// decide el controller.
type Detector struct {
	cfg domain.DetectorConfig
}

// NewDetector crea un Detector con los umbrales dados.
func NewDetector(cfg domain.DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Classify evalúa un snapshot.
func (d *Detector) Classify(m domain.Market, now time.Time) domain.Classification {
	return domain.Classify(m, d.cfg, now)
}
