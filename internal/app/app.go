package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/salesops/config"
	"github.com/niksmo/salesops/internal/adapter"
	"github.com/niksmo/salesops/internal/adapter/httphandler"
	"github.com/niksmo/salesops/internal/adapter/kafka"
	"github.com/niksmo/salesops/internal/adapter/search"
	"github.com/niksmo/salesops/internal/adapter/storage"
	"github.com/niksmo/salesops/internal/core/port"
	"github.com/niksmo/salesops/internal/core/service"
	"github.com/niksmo/salesops/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type serdes struct {
	item          schema.Serde
	exclusionRule schema.Serde
}

type producers struct {
	items         *kafka.ItemsProducer
	exclusionRule *kafka.ExclusionRulesProducer
}

type streams struct {
	exclusionProc *kafka.ExclusionRulesProcessor
	gateProc      *kafka.ItemGateProcessor
	view          *kafka.ExclusionsView
	itemsConsumer *kafka.ItemsConsumer
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	client     kafka.ClientConfig
	sqldb      storage.SQLDB
	repository storage.ProductsRepository
	index      *search.ProductsIndex
	serdes     serdes
	producers  producers
	streams    streams
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initSearch()
	if cfg.Broker.Enabled() {
		app.initClientConfig()
		app.initSerdes()
		app.initProducers()
		app.initStreams()
	} else {
		slog.Warn("broker is not configured, ingestion pipeline is disabled")
	}
	app.initCoreService()
	app.initConsumer()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}

	app.sqldb = sqldb
	app.repository = storage.NewProductsRepository(sqldb)
}

func (app *App) initSearch() {
	const op = "App.initSearch"

	if app.cfg.Search.URL == "" {
		slog.Warn("search is not configured, search is disabled")
		return
	}

	index, err := search.NewProductsIndex(app.ctx, search.ProductsConfig{
		URL:    app.cfg.Search.URL,
		APIKey: app.cfg.Search.APIKey,
		Index:  app.cfg.Search.Index,
	})
	if err != nil {
		app.fallDown(op, err)
	}
	app.index = &index
}

func (app *App) initClientConfig() {
	const op = "App.initClientConfig"
	b := app.cfg.Broker

	var tlsConfig *tls.Config
	if b.TLS.Enabled() {
		var err error
		tlsConfig, err = adapter.MakeTLSConfig(b.TLS.CA, b.TLS.Cert, b.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
	}

	app.client = kafka.ClientConfig{
		SeedBrokers: b.SeedBrokers,
		TLSConfig:   tlsConfig,
		User:        b.SASL.User,
		Pass:        b.SASL.Pass,
	}
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	ctx := app.ctx
	topics := app.cfg.Broker.Topics

	srOpts := []sr.ClientOpt{sr.URLs(app.cfg.Broker.SchemaRegistryURLs...)}
	if app.client.TLSConfig != nil {
		srOpts = append(srOpts, sr.DialTLSConfig(app.client.TLSConfig))
	}
	if app.client.User != "" {
		srOpts = append(srOpts, sr.BasicAuth(app.client.User, app.client.Pass))
	}

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}

	registry := schema.NewSchemaRegistry(srClient)

	itemSerde, err := schema.NewSerdeItemV1(
		ctx,
		schema.SubjectOpt(topics.ItemsFromBooks+"-value"),
		schema.SchemaIdentifierOpt(registry),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	exclusionRuleSerde, err := schema.NewSerdeExclusionRuleV1(
		ctx,
		schema.SubjectOpt(topics.CatalogueExclusions+"-value"),
		schema.SchemaIdentifierOpt(registry),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.item = itemSerde
	app.serdes.exclusionRule = exclusionRuleSerde
}

func (app *App) initProducers() {
	const op = "App.initProducers"
	ctx := app.ctx
	topics := app.cfg.Broker.Topics

	itemsProducer, err := kafka.NewItemsProducer(
		kafka.ProducerClientOpt(ctx, app.client, topics.ItemsFromBooks),
		kafka.ProducerEncoderOpt(app.serdes.item),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	exclusionRuleProducer, err := kafka.NewExclusionRulesProducer(
		kafka.ProducerClientOpt(ctx, app.client, topics.CatalogueExclusions),
		kafka.ProducerEncoderOpt(app.serdes.exclusionRule),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.producers.items = &itemsProducer
	app.producers.exclusionRule = &exclusionRuleProducer
}

func (app *App) initStreams() {
	const op = "App.initStreams"
	topics := app.cfg.Broker.Topics

	exclusionProc, err := kafka.NewExclusionRulesProc(
		app.client,
		topics.CatalogueExclusions,
		topics.ExclusionsTable,
		app.serdes.exclusionRule,
	)
	if err != nil {
		app.fallDown(op, err)
	}

	gateProc, err := kafka.NewItemGateProc(kafka.ItemGateConfig{
		Client:         app.client,
		Group:          app.cfg.Broker.Consumers.ItemsGateGroup,
		InputStream:    topics.ItemsFromBooks,
		ExclusionTable: topics.ExclusionsTable,
		OutputStream:   topics.ItemsToStorage,
		ItemSerde:      app.serdes.item,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	view, err := kafka.NewExclusionsView(kafka.ExclusionsViewConfig{
		Client:         app.client,
		ExclusionTable: topics.ExclusionsTable,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	app.streams.exclusionProc = exclusionProc
	app.streams.gateProc = gateProc
	app.streams.view = view
}

// initCoreService passes untyped nils for disabled components.
func (app *App) initCoreService() {
	var (
		index             port.SearchIndex
		itemsProducer     port.ItemsProducer
		exclusionProducer port.ExclusionProducer
		exclusionProc     port.ExclusionRulesProcessor
		gateProc          port.ItemGateProcessor
		view              port.ExclusionsView
	)

	if app.index != nil {
		index = app.index
	}
	if app.producers.items != nil {
		itemsProducer = app.producers.items
		exclusionProducer = app.producers.exclusionRule
		exclusionProc = app.streams.exclusionProc
		gateProc = app.streams.gateProc
		view = app.streams.view
	}

	c := app.cfg.Catalogue
	app.service = service.New(
		app.repository,
		index,
		itemsProducer,
		exclusionProducer,
		exclusionProc,
		gateProc,
		view,
		service.Config{
			NewArrivalWindow: c.NewArrivalWindow,
			UpperCaseBrands:  c.UpperCaseBrands,
			DefaultPerPage:   c.DefaultPerPage,
			MaxPerPage:       c.MaxPerPage,
		},
	)
}

func (app *App) initConsumer() {
	const op = "App.initConsumer"

	if !app.cfg.Broker.Enabled() {
		return
	}

	itemsConsumer, err := kafka.NewItemsConsumer(
		kafka.ConsumerClientOpt(
			app.client,
			app.cfg.Broker.Topics.ItemsToStorage,
			app.cfg.Broker.Consumers.ItemsSaverGroup,
		),
		kafka.ConsumerDecoderOpt(app.serdes.item),
		kafka.ItemsConsumerSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.streams.itemsConsumer = &itemsConsumer
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	s := app.service

	mux := http.NewServeMux()
	httphandler.RegisterCatalogue(mux, s, s, s)
	httphandler.RegisterWebhooks(mux, s)
	httphandler.RegisterExclusions(mux, s, s)
	httphandler.RegisterHealth(mux)

	var handler http.Handler = mux
	handler = httphandler.AllowJSON(handler)
	handler = httphandler.CORS(app.cfg.CORSAllowedOrigins)(handler)
	handler = httphandler.LogRequests(handler)
	handler = httphandler.RequestID(handler)

	app.httpServer = httphandler.NewHTTPServer(httphandler.ServerConfig{
		Addr:           addr,
		RequestTimeout: app.cfg.HTTPRequestTimeout,
	}, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	app.service.Run(app.ctx, stopFn)

	if app.streams.itemsConsumer != nil {
		go app.streams.itemsConsumer.Run(app.ctx)
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if app.streams.itemsConsumer != nil {
		app.streams.itemsConsumer.Close()
	}
	app.service.Close()
	if app.producers.items != nil {
		app.producers.items.Close()
		app.producers.exclusionRule.Close()
	}
	app.sqldb.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
