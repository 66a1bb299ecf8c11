package program

import (
	"context"

	"github.com/google/uuid"

	"conprog/internal/config"
	"conprog/internal/localtime"
	"conprog/internal/model"
)

// Pipeline ties the fetcher and normalizer together: one Refresh call is one
// full recomputation of the dataset from freshly fetched feed snapshots.
type Pipeline struct {
	cfg     *config.Config
	fetcher *Fetcher
	norm    *Normalizer
}

// NewPipeline builds the refresh pipeline for the given config and temporal
// service.
func NewPipeline(cfg *config.Config, times *localtime.Service) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		fetcher: NewFetcher(cfg.CacheDir),
		norm:    NewNormalizer(cfg, times),
	}
}

// Refresh fetches both feeds and rebuilds the dataset from scratch. It
// either returns a complete dataset or an error; the caller decides whether
// to keep showing a previously built one.
func (p *Pipeline) Refresh(ctx context.Context) (*model.Dataset, error) {
	programText, err := p.fetcher.Fetch(ctx, "program", p.cfg.ProgramURL)
	if err != nil {
		return nil, err
	}
	peopleText, err := p.fetcher.Fetch(ctx, "people", p.cfg.PeopleURL)
	if err != nil {
		return nil, err
	}
	return p.norm.BuildDataset(programText, peopleText)
}

func newDatasetID() uuid.UUID {
	return uuid.New()
}
