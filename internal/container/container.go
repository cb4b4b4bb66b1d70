package container

import (
	"fmt"
	"log/slog"

	"dormscore/adapters/excel"
	"dormscore/adapters/office"
	"dormscore/app"
	"dormscore/internal/config"
	"dormscore/internal/dataset"
	"dormscore/internal/logging"
	"dormscore/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	Ingestor  *dataset.Ingestor
	Renderer  *excel.Renderer
	Converter ports.ConverterPort

	ReportService *app.ReportService
}

// New creates a new dependency injection container. The default logger must
// already be configured since components capture it on construction.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	if err := c.initIngestion(); err != nil {
		return nil, fmt.Errorf("failed to initialize ingestion: %w", err)
	}
	c.initRendering()
	c.initConversion()

	c.ReportService = app.NewReportService(c.Ingestor, c.Renderer, c.Converter)

	logging.Component("container").Debug("container initialized",
		slog.String("folder", cfg.Input.Folder),
		slog.String("encoding", cfg.Input.Encoding),
		slog.String("converter", c.Converter.Name()))
	return c, nil
}

// WithConverter replaces the PDF converter and rebuilds the report service.
func (c *Container) WithConverter(conv ports.ConverterPort) *Container {
	c.Converter = conv
	c.ReportService = app.NewReportService(c.Ingestor, c.Renderer, conv)
	return c
}

func (c *Container) initIngestion() error {
	enc, err := excel.LookupEncoding(c.Config.Input.Encoding)
	if err != nil {
		return err
	}
	c.Ingestor = dataset.NewIngestor(dataset.IngestConfig{
		Prefix:    c.Config.Input.Prefix,
		Extension: c.Config.Input.Extension,
		Encoding:  enc,
	})
	return nil
}

func (c *Container) printSetup() excel.PrintSetup {
	setup := excel.DefaultPrintSetup()
	setup.MarginInches = c.Config.Office.MarginInches
	return setup
}

func (c *Container) initRendering() {
	opts := excel.DefaultRenderOptions()
	opts.ContactLocalPart = c.Config.Report.ContactLocalPart
	opts.ContactDomain = c.Config.Report.ContactDomain
	opts.FeedbackMailbox = c.Config.Report.FeedbackMailbox
	opts.FontFamily = c.Config.Report.FontFamily
	opts.Print = c.printSetup()
	c.Renderer = excel.NewRenderer(opts)
}

func (c *Container) initConversion() {
	c.Converter = office.NewLibreOfficeConverter(office.Config{
		Binary:  c.Config.Office.Binary,
		Timeout: c.Config.Office.Timeout,
		Print:   c.printSetup(),
	})
}
