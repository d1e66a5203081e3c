package service

import (
	"context"
	"sync"
	"time"

	"github.com/niksmo/salesops/internal/core/port"
)

var _ port.CatalogueLister = (*Service)(nil)
var _ port.ProductsEditor = (*Service)(nil)
var _ port.ProductsSearcher = (*Service)(nil)
var _ port.ItemAccepter = (*Service)(nil)
var _ port.ExclusionSetter = (*Service)(nil)
var _ port.ExclusionGetter = (*Service)(nil)
var _ port.ProductsSaver = (*Service)(nil)

const (
	defaultPerPage          = 25
	defaultMaxPerPage       = 100
	defaultNewArrivalWindow = 90 * 24 * time.Hour
)

var defaultUpperCaseBrands = []string{"FOFOS"}

type Config struct {
	// NewArrivalWindow is how long a product is flagged as new after creation.
	NewArrivalWindow time.Duration
	// UpperCaseBrands keep their upper-case spelling when a brand is
	// derived from an item name.
	UpperCaseBrands []string
	DefaultPerPage  int
	MaxPerPage      int
	Now             func() time.Time
}

func (c *Config) normalize() {
	if c.NewArrivalWindow <= 0 {
		c.NewArrivalWindow = defaultNewArrivalWindow
	}
	if len(c.UpperCaseBrands) == 0 {
		c.UpperCaseBrands = defaultUpperCaseBrands
	}
	if c.DefaultPerPage <= 0 {
		c.DefaultPerPage = defaultPerPage
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = defaultMaxPerPage
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type Service struct {
	storage           port.ProductsStorage
	index             port.SearchIndex
	itemsProducer     port.ItemsProducer
	exclusionProducer port.ExclusionProducer
	exclusionProc     port.ExclusionRulesProcessor
	gateProc          port.ItemGateProcessor
	exclusionsView    port.ExclusionsView
	cfg               Config
}

// New returns the catalogue service.
//
// The index and the kafka components may be nil, in which case the
// depending operations are disabled.
func New(
	storage port.ProductsStorage,
	index port.SearchIndex,
	itemsProducer port.ItemsProducer,
	exclusionProducer port.ExclusionProducer,
	exclusionProc port.ExclusionRulesProcessor,
	gateProc port.ItemGateProcessor,
	exclusionsView port.ExclusionsView,
	cfg Config,
) Service {
	cfg.normalize()
	return Service{
		storage,
		index,
		itemsProducer,
		exclusionProducer,
		exclusionProc,
		gateProc,
		exclusionsView,
		cfg,
	}
}

// Run runs the services components in separate goroutines.
//
// Blocks current goroutine while components is preparing to ready state.
func (s Service) Run(ctx context.Context, stopFn context.CancelFunc) {
	var wg sync.WaitGroup
	if s.exclusionProc != nil {
		wg.Add(1)
		go s.exclusionProc.Run(ctx, stopFn, &wg)
	}
	if s.gateProc != nil {
		wg.Add(1)
		go s.gateProc.Run(ctx, stopFn, &wg)
	}
	if s.exclusionsView != nil {
		wg.Add(1)
		go s.exclusionsView.Run(ctx, stopFn, &wg)
	}
	wg.Wait()
}

func (s Service) Close() {
	if s.exclusionProc != nil {
		s.exclusionProc.Close()
	}
	if s.gateProc != nil {
		s.gateProc.Close()
	}
}
