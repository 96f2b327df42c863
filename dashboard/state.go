package dashboard

import (
	"context"
	"sync"

	"listings-analytics/models"
	"listings-analytics/services"
	"listings-analytics/utils"
)

// DatasetSource loads the joined listings.
type DatasetSource interface {
	Load(ctx context.Context) (*services.Dataset, error)
}

// state holds the loaded dataset and the views derived from it. Views are
// rebuilt only when the dataset fingerprint changes.
type state struct {
	source DatasetSource
	logger *utils.Logger

	mu       sync.Mutex
	dataset  *services.Dataset
	views    *models.Views
	viewsFor string
}

// current returns the loaded dataset, loading it on first use.
func (s *state) current(ctx context.Context) (*services.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset != nil {
		return s.dataset, nil
	}
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.dataset = ds
	return ds, nil
}

// reload replaces the dataset with a fresh load. On failure the previous
// dataset stays in place.
func (s *state) reload(ctx context.Context) (*services.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()
	return ds, nil
}

// viewsOf returns the cached views for ds, computing them once per fingerprint.
func (s *state) viewsOf(ds *services.Dataset) models.Views {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.views != nil && s.viewsFor == ds.Fingerprint {
		return *s.views
	}
	v := services.BuildViews(ds.Listings)
	s.views, s.viewsFor = &v, ds.Fingerprint
	s.logger.Debug("[dashboard] Built views for dataset %s", ds.Fingerprint)
	return v
}
