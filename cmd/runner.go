package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunify/internal/repositories"
	"github.com/desertthunder/tunify/internal/services"
	"github.com/desertthunder/tunify/internal/shared"
	"github.com/desertthunder/tunify/internal/upload"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, songsCommand, uploadCommand, convertCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps in the config file named by the command's --config flag
// when it exists.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	configPath := cmd.String("config")
	if configPath == "" {
		return
	}
	if _, err := os.Stat(configPath); err != nil {
		return
	}
	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("failed to load config, keeping current", "path", configPath, "error", err)
		return
	}
	r.config = config
}

// openDatabase opens the configured SQLite database and returns it with a
// song repository attached.
func (r *Runner) openDatabase() (*sql.DB, *repositories.SongRepository, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, repositories.NewSongRepository(db), nil
}

// storageService builds the object storage client from config.
func (r *Runner) storageService() *services.StorageService {
	return services.NewStorageService(r.config.Storage.BaseURL, r.config.Storage.APIKey, r.httpClient)
}

// converterService builds the conversion API client from config.
func (r *Runner) converterService() *services.ConverterService {
	return services.NewConverterService(r.config.Converter.BaseURL, r.config.Converter.APIKey, r.httpClient)
}

// audioFetcher picks how converted audio is retrieved: through a running
// service's /api/proxy-audio when relayURL names one, directly from the
// conversion host otherwise.
func (r *Runner) audioFetcher(relayURL string) services.AudioFetcher {
	if relayURL != "" {
		return services.NewRelayService(relayURL, r.httpClient)
	}
	return services.NewDirectFetcher(r.httpClient)
}

// newCoordinator wires an upload coordinator over the provided store using
// the configured services.
func (r *Runner) newCoordinator(store upload.MetadataStore, fetcher services.AudioFetcher) *upload.Coordinator {
	if fetcher == nil {
		fetcher = r.audioFetcher("")
	}

	gate := upload.NewCooldownGate(
		upload.NewFileStateStore(r.config.Upload.StatePath),
		time.Duration(r.config.Upload.CooldownSeconds)*time.Second,
		nil,
	)

	return upload.NewCoordinator(upload.Opts{
		Storage:     r.storageService(),
		Converter:   r.converterService(),
		Fetcher:     fetcher,
		Store:       store,
		Gate:        gate,
		CoverBucket: r.config.Storage.CoverBucket,
		AudioBucket: r.config.Storage.AudioBucket,
		Logger:      r.logger,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
