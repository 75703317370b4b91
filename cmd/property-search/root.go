package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"property-search-service/internal"
	"property-search-service/internal/adapters/listingdoc"
	logger_adapter "property-search-service/internal/adapters/logger"
	"property-search-service/internal/adapters/memstore"
	"property-search-service/internal/configs"
	"property-search-service/internal/contextkeys"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type options struct {
	jsonFilters string
	purpose     string
	features    string
	to          string
	dry         bool
	fixtures    string
	envFile     string
	amqpURL     string
	verbose     bool
}

type matchOutput struct {
	Tier  domain.Tier            `json:"tier"`
	Match *domain.ListingSummary `json:"match"`
}

type noMatchOutput struct {
	NoMatch bool               `json:"no_match"`
	Tier    domain.Tier        `json:"tier"`
	Debug   []domain.TierTrace `json:"debug"`
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "property-search [keyword]",
		Short: "Find the best matching property and print its summary",
		Long: "Runs the tiered search against the listing store (or a JSON fixtures file)\n" +
			"and prints the summary of the best match. Exits with 4 when nothing matches.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.jsonFilters, "json", "", "inline JSON object of filters")
	flags.StringVar(&opts.purpose, "purpose", "all", "sale, rental or all")
	flags.StringVar(&opts.features, "features", "", "comma-separated amenity keywords, e.g. 'garden,parking'")
	flags.StringVar(&opts.to, "to", "", "phone number to notify with the match")
	flags.BoolVar(&opts.dry, "dry", false, "print the match but skip the notification")
	flags.StringVar(&opts.fixtures, "fixtures", "", "search a JSON array of listing documents instead of the configured store")
	flags.StringVar(&opts.envFile, "env-file", "", "path to a .env file")
	flags.StringVar(&opts.amqpURL, "amqp-url", os.Getenv("RABBITMQ_URL"), "RabbitMQ URL used for notifications")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitError{code: exitInvalidQuery, err: err}
	})
	return cmd
}

// buildQuery собирает сырой запрос так же, как его собирают остальные входы:
// --json важнее позиционного ключевого слова, purpose подставляется только если его нет.
func buildQuery(opts *options, args []string) (domain.RawQuery, error) {
	switch opts.purpose {
	case "sale", "rental", "all":
	default:
		return nil, fmt.Errorf("invalid --purpose %q (expected sale, rental or all)", opts.purpose)
	}

	keyword := ""
	if len(args) > 0 {
		keyword = args[0]
	}

	if opts.jsonFilters != "" {
		body := map[string]interface{}{}
		if err := json.Unmarshal([]byte(opts.jsonFilters), &body); err != nil {
			return nil, fmt.Errorf("invalid --json: %w", err)
		}
		if _, ok := body["keyword"]; !ok && keyword != "" {
			body["keyword"] = keyword
		}
		if _, ok := body["purpose"]; !ok {
			body["purpose"] = opts.purpose
		}
		return domain.RawQuery(body), nil
	}

	q := domain.RawQuery{"keyword": keyword, "purpose": opts.purpose}
	if opts.features != "" {
		var features []interface{}
		for _, f := range strings.Split(opts.features, ",") {
			if f = strings.TrimSpace(f); f != "" {
				features = append(features, f)
			}
		}
		q["features"] = features
	}
	return q, nil
}

func runSearch(ctx context.Context, opts *options, args []string, out, errOut io.Writer) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{Writer: errOut, Level: level}).
		WithFields(port.Fields{"service_name": "property-search-cli"})
	ctx = contextkeys.ContextWithLogger(ctx, logger)

	query, err := buildQuery(opts, args)
	if err != nil {
		return exitError{code: exitInvalidQuery, err: err}
	}

	store, searchCfg, closeStore, err := openStore(ctx, opts, logger)
	if err != nil {
		return exitError{code: exitStoreUnavailable, err: err}
	}
	defer closeStore()

	core := internal.NewSearchCore(searchCfg, store)

	result, err := core.FindBestMatch.Execute(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrMissingKeyword) {
			return exitError{code: exitInvalidQuery, err: err}
		}
		return exitError{code: exitStoreUnavailable, err: err}
	}

	if !result.Found() {
		if err := writeJSON(out, noMatchOutput{NoMatch: true, Tier: result.Tier, Debug: result.Debug}); err != nil {
			return err
		}
		return exitError{code: exitNoMatch}
	}

	summary := core.Summarizer.Summarize(result.Listing)
	if err := writeJSON(out, matchOutput{Tier: result.Tier, Match: &summary}); err != nil {
		return err
	}

	if opts.to == "" {
		return nil
	}
	if opts.dry {
		fmt.Fprintln(errOut, "dry run: notification skipped")
		return nil
	}
	if err := notify(ctx, opts, logger, domain.SearchOutcome{
		RequestID:   uuid.NewString(),
		PhoneNumber: opts.to,
		Tier:        result.Tier,
		Summary:     &summary,
	}); err != nil {
		return exitError{code: exitNotifyFailed, err: err}
	}
	fmt.Fprintf(errOut, "notification queued for %s\n", opts.to)
	return nil
}

// openStore: фикстуры читаются в память, иначе хранилище берется из конфигурации и пингуется.
func openStore(ctx context.Context, opts *options, logger port.LoggerPort) (port.ListingStorePort, configs.SearchConfig, func(), error) {
	if opts.fixtures != "" {
		listings, err := listingdoc.LoadFile(opts.fixtures)
		if err != nil {
			return nil, configs.SearchConfig{}, nil, err
		}
		logger.Debug("Fixtures loaded", port.Fields{"path": opts.fixtures, "count": len(listings)})
		return memstore.New(listings...), configs.LoadSearchConfig(), func() {}, nil
	}

	var envPaths []string
	if opts.envFile != "" {
		envPaths = append(envPaths, opts.envFile)
	}
	cfg, err := configs.LoadConfig(envPaths...)
	if err != nil {
		return nil, configs.SearchConfig{}, nil, err
	}

	store, closeStore, err := internal.OpenListingStore(ctx, cfg, logger)
	if err != nil {
		return nil, configs.SearchConfig{}, nil, err
	}
	if err := store.Ping(ctx); err != nil {
		closeStore()
		return nil, configs.SearchConfig{}, nil, fmt.Errorf("listing store is not reachable: %w", err)
	}
	return store, cfg.Search, closeStore, nil
}

func notify(ctx context.Context, opts *options, logger port.LoggerPort, outcome domain.SearchOutcome) error {
	messaging, err := internal.OpenMessaging(opts.amqpURL, logger)
	if err != nil {
		return err
	}
	defer messaging.Close()

	return messaging.MatchPublisher.PublishOutcome(ctx, outcome)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
