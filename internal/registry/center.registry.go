package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"exam-service/internal/domain"
	xerrors "exam-service/pkg/xerrors"
)

// defaultCenter keeps a misconfigured non-production deployment usable.
// Production refuses to start without configured centers instead.
var defaultCenter = domain.ExamCenter{
	Token:        "ExamCenter1",
	DisplayName:  "Main Examination Hall",
	Latitude:     22.3151,
	Longitude:    73.1444,
	RadiusMeters: 300,
}

// Registry maps admission tokens to exam centers. Built once at startup and
// immutable afterwards; injected into handlers rather than held as a global.
type Registry struct {
	centers map[string]domain.ExamCenter
}

func New(centers []domain.ExamCenter) *Registry {
	m := make(map[string]domain.ExamCenter, len(centers))
	for _, c := range centers {
		m[c.Token] = c
	}
	return &Registry{centers: m}
}

// Load reads the centers file and builds the registry. An empty center set
// falls back to the built-in default center outside production.
func Load(centersFile string, production bool) (*Registry, error) {
	var centers []domain.ExamCenter

	if centersFile != "" {
		b, err := os.ReadFile(centersFile)
		if err != nil {
			return nil, fmt.Errorf("read centers file %s: %w", centersFile, err)
		}
		if err := json.Unmarshal(b, &centers); err != nil {
			return nil, fmt.Errorf("parse centers file %s: %w", centersFile, err)
		}
	}

	if len(centers) == 0 {
		if production {
			return nil, xerrors.ErrNoCentersConfigured
		}
		log.Printf("[WARN] no exam centers configured, falling back to default center %q", defaultCenter.Token)
		centers = []domain.ExamCenter{defaultCenter}
	}

	return New(centers), nil
}

// Resolve returns the exam center registered for a token. Unknown token
// means admission denied.
func (r *Registry) Resolve(token string) (domain.ExamCenter, error) {
	c, ok := r.centers[token]
	if !ok {
		return domain.ExamCenter{}, xerrors.ErrUnknownToken
	}
	return c, nil
}

func (r *Registry) Len() int {
	return len(r.centers)
}
