// Package main is the kotae CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/agent"
	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/knowledge"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/search"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/service"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). A missing file yields
// the defaults. .env in the current directory and the environment are applied last.
// Returns the config and the path that was actually used.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "upload":
		runUpload()
	case "docs":
		runDocs()
	case "delete":
		runDelete()
	case "search":
		runSearch()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	return utils.NewLoggerWithFile(debug, utils.LogFileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (file indexing, agent steps, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := newLogger(cfg, debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	serverOpts := []server.ServerOption{
		server.WithModelName(components.ModelName),
		server.WithDiskPaths(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath),
	}
	if components.Cache != nil {
		serverOpts = append(serverOpts, server.WithCache(components.Cache))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		watchSvc := watcher.NewWatcher(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			components.Indexer,
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		synced := watchSvc.SyncExistingFiles(watchCtx)
		logger.Info("Inbox synced", zap.Int("files", synced), zap.Strings("directories", watchSvc.Directories()))
		serverOpts = append(serverOpts, server.WithWatchService(watchSvc))
	}

	srv := server.NewServer(
		components.Service,
		components.Engine,
		components.Indexer,
		components.Storage,
		&cfg.Server,
		logger,
		version,
		serverOpts...,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front of the slice so that flag.Parse() sees them.
// Go's flag package stops at the first non-flag argument, so
// `kotae ask "question" -output json` would otherwise leave -output unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinArgs joins all positional args with spaces so multi-word input works
// the same with or without shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func fail(action string, err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "%s failed: %v\n", action, err)
	os.Exit(1)
}

// openDirect loads config and components for commands run without a server.
// Bleve holds a file lock, so this only works while the server is stopped.
func openDirect(configPath string, debug bool) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	if debug || cfg.Debug {
		if l, err := newLogger(cfg, true); err == nil {
			logger = l
		}
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, logger
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae ask What is Python good for?
  kotae ask --no-cache "compare python and go"
  kotae ask --stream=false --output json "what is go"
  kotae ask --server "" "what is go"              # run the agent in-process
`)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = run the agent in-process)")
	stream := fs.Bool("stream", true, "stream steps over the WebSocket endpoint as they happen")
	noCache := fs.Bool("no-cache", false, "bypass the answer cache")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging in direct mode")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	question := joinArgs(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	req := &models.QueryRequest{Query: question}
	if *noCache {
		off := false
		req.UseCache = &off
	}
	// Steps are printed live only for text output; JSON prints once at the end.
	var onStep func(models.Step)
	if format == cli.OutputText {
		onStep = func(s models.Step) { cli.WriteStep(os.Stdout, s) }
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var resp *models.QueryResponse
	var err error
	streamed := false
	if *serverURL != "" {
		client := cli.NewClient(*serverURL)
		if *stream {
			resp, err = client.StreamQuery(ctx, req, onStep)
			streamed = onStep != nil
		} else {
			resp, err = client.Query(ctx, req)
		}
	} else {
		components, logger := openDirect(*configPath, *debug)
		defer logger.Sync()
		defer components.Close()
		resp, err = components.Service.Query(ctx, req, onStep)
		streamed = onStep != nil
	}
	if err != nil {
		fail("Query", err)
	}
	if err := cli.WriteQueryResponse(os.Stdout, resp, format, !streamed); err != nil {
		fail("Output", err)
	}
	if !resp.Success {
		os.Exit(1)
	}
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = write to storage directly)")
	title := fs.String("title", "", "upload the file as plain text under this title")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae upload [flags] <file>...")
		os.Exit(1)
	}
	if *title != "" && fs.NArg() > 1 {
		fmt.Println("--title can only be used with a single file")
		os.Exit(1)
	}
	ctx := context.Background()

	var upload func(path string) (string, error)
	if *serverURL != "" {
		client := cli.NewClient(*serverURL)
		upload = func(path string) (string, error) {
			if *title != "" {
				content, err := os.ReadFile(path)
				if err != nil {
					return "", err
				}
				return client.UploadText(ctx, *title, string(content))
			}
			return client.UploadFile(ctx, path)
		}
	} else {
		components, logger := openDirect(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		upload = func(path string) (string, error) {
			content, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			if *title != "" {
				doc, err := components.Indexer.AddDocument(ctx, &models.DocumentInput{Title: *title, Content: string(content)})
				if err != nil {
					return "", err
				}
				return doc.Title, nil
			}
			doc, err := components.Indexer.IndexBytes(ctx, filepath.Base(path), content, models.SourceFile)
			if err != nil {
				return "", err
			}
			return doc.Title, nil
		}
	}

	failed := 0
	for _, path := range fs.Args() {
		id, err := upload(path)
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("Document uploaded: %s\n", id)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runDocs() {
	fs := flag.NewFlagSet("docs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = read storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var docs []models.DocumentSummary
	if *serverURL != "" {
		var err error
		docs, err = cli.NewClient(*serverURL).ListDocuments(context.Background())
		if err != nil {
			fail("Listing documents", err)
		}
	} else {
		components, logger := openDirect(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		components.Indexer.Documents().Snapshot().Each(func(title, content string) bool {
			docs = append(docs, models.Summarize(title, content))
			return true
		})
	}
	if err := cli.WriteDocuments(os.Stdout, docs, format); err != nil {
		fail("Output", err)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = write to storage directly)")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	title := joinArgs(fs.Args())
	if title == "" {
		fmt.Println("Usage: kotae delete [flags] <title>")
		os.Exit(1)
	}
	ctx := context.Background()
	if *serverURL != "" {
		if err := cli.NewClient(*serverURL).DeleteDocument(ctx, title); err != nil {
			fail("Deletion", err)
		}
	} else {
		components, logger := openDirect(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		if err := components.Indexer.DeleteDocument(ctx, title); err != nil {
			fail("Deletion", err)
		}
	}
	fmt.Printf("Document deleted: %s\n", title)
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Full-text search over document titles and contents. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
When nothing matches, the search is retried once with fuzzy matching.

Examples:
  kotae search machine learning
  kotae search --fuzzy pyhton
  kotae search --limit 20 --output json "release notes"
`)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = use the index directly)")
	limit := fs.Int("limit", 10, "number of results")
	offset := fs.Int("offset", 0, "number of results to skip")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	queryStr := joinArgs(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	ctx := context.Background()

	var run func(q *models.DocumentSearchQuery) (*models.DocumentSearchResponse, error)
	if *serverURL != "" {
		client := cli.NewClient(*serverURL)
		run = func(q *models.DocumentSearchQuery) (*models.DocumentSearchResponse, error) {
			return client.Search(ctx, q)
		}
	} else {
		components, logger := openDirect(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		run = func(q *models.DocumentSearchQuery) (*models.DocumentSearchResponse, error) {
			return components.Engine.Search(ctx, q)
		}
	}

	q := &models.DocumentSearchQuery{Query: queryStr, Limit: *limit, Offset: *offset, Fuzzy: *fuzzy}
	response, err := run(q)
	if err != nil {
		fail("Search", err)
	}
	if !q.Fuzzy && response.Total == 0 {
		retry := *q
		retry.Fuzzy = true
		if fuzzyResponse, fuzzyErr := run(&retry); fuzzyErr == nil && fuzzyResponse.Total > 0 {
			response = fuzzyResponse
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fail("Output", err)
	}
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = read storage directly)")
	limit := fs.Int("limit", 10, "number of queries to show")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	ctx := context.Background()
	var records []*models.QueryRecord
	var err error
	if *serverURL != "" {
		records, err = cli.NewClient(*serverURL).History(ctx, *limit)
	} else {
		components, logger := openDirect(*configPath, false)
		defer logger.Sync()
		defer components.Close()
		records, err = components.Service.History(ctx, *limit)
	}
	if err != nil {
		fail("History", err)
	}
	if err := cli.WriteHistory(os.Stdout, records, format); err != nil {
		fail("Output", err)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", cli.DefaultServerURL, "server URL (empty = read storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	ctx := context.Background()
	var st *cli.Status
	if *serverURL != "" {
		var err error
		st, err = cli.NewClient(*serverURL).Status(ctx)
		if err != nil {
			fail("Status", err)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		components, err := initializeComponents(cfg, zap.NewNop())
		if err != nil {
			fmt.Printf("Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		st, err = directStatus(ctx, components, cfg)
		if err != nil {
			fail("Status", err)
		}
	}
	if err := cli.WriteStatus(os.Stdout, st, format); err != nil {
		fail("Output", err)
	}
}

func directStatus(ctx context.Context, c *Components, cfg *config.Config) (*cli.Status, error) {
	count, err := c.Storage.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	st := &cli.Status{
		Version:          version,
		Documents:        int(count),
		DocumentVersion:  c.Indexer.Documents().Version(),
		AgentReady:       c.Service.Ready(),
		Model:            c.ModelName,
		WatchDirectories: cfg.Watch.Directories,
	}
	if n, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
		st.DiskUsageBytes = n
	}
	return st, nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex keyword.KeywordIndex
	Documents    *knowledge.Store
	Cache        *cache.AnswerCache
	Indexer      *indexer.Indexer
	Engine       *search.Engine
	Service      *service.QueryService
	ModelName    string
}

func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
		c.KeywordIndex = nil
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
		c.Storage = nil
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c := &Components{Storage: store, Documents: knowledge.NewStore()}

	bleveIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	c.KeywordIndex = bleveIndex

	idxOpts := []indexer.IndexerOption{indexer.WithLogger(logger)}
	serviceOpts := []service.Option{
		service.WithLogger(logger),
		service.WithHistoryLimit(cfg.Agent.HistoryLimit),
	}
	if cfg.Cache.EnabledOrDefault() {
		c.Cache = cache.NewAnswerCache(cfg.Cache.TTL(), cfg.Cache.MaxEntries)
		idxOpts = append(idxOpts, indexer.WithOnChange(c.Cache.Invalidate))
		serviceOpts = append(serviceOpts, service.WithCache(c.Cache))
	}

	c.Indexer = indexer.NewIndexer(store, c.KeywordIndex, c.Documents, extract.NewExtractor(), idxOpts...)
	if err := c.Indexer.LoadAll(context.Background()); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	logger.Info("documents loaded", zap.Int("count", c.Documents.Snapshot().Len()))

	model, err := llm.New(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.TemperatureOrDefault(),
		Timeout:     cfg.LLM.Timeout(),
		Script:      cfg.LLM.Script,
	})
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		logger.Warn("Gemini API key not configured; queries will be rejected until " + config.EnvGeminiAPIKey + " is set")
	case err != nil:
		c.Close()
		return nil, fmt.Errorf("failed to initialize model: %w", err)
	default:
		c.ModelName = model.Name()
		logger.Info("language model configured", zap.String("model", c.ModelName))
	}

	agentOpts := []agent.Option{
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithSystemPrompt(cfg.Agent.SystemPrompt),
		agent.WithLogger(logger),
	}
	if cfg.LLM.MaxTokens > 0 {
		agentOpts = append(agentOpts, agent.WithCallOptions(llm.WithMaxTokens(cfg.LLM.MaxTokens)))
	}
	ag := agent.New(model, agentOpts...)

	c.Engine = search.NewEngine(c.KeywordIndex, c.Documents, cfg.Retrieval)
	c.Service = service.New(ag, c.Documents, store, serviceOpts...)
	return c, nil
}

func printUsage() {
	fmt.Println(`kotae - Ask questions about your documents

Usage:
  kotae server [flags]             Start the HTTP and WebSocket server
  kotae ask [flags] <question>     Ask the agent a question
  kotae upload [flags] <file>...   Add documents to the knowledge base
  kotae docs [flags]               List documents
  kotae delete [flags] <title>     Delete a document
  kotae search [flags] <query>     Full-text search over documents
  kotae history [flags]            Show recent queries
  kotae status [flags]             Show server, agent and storage status
  kotae version                    Show version
  kotae help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Common Flags:
  --server string    Server URL (default: http://localhost:8000). Use --server "" to work on
                     local storage directly while the server is not running.
  --config string    Config file path (for direct mode)
  --output string    Output format: text or json (ask, docs, search, history, status)

Ask Flags:
  --stream           Stream steps as they happen (default: true)
  --no-cache         Bypass the answer cache

Upload Flags:
  --title string     Upload a single file as plain text under this title

Environment:
  GEMINI_API_KEY     Gemini API key (also read from .env)
  KOTAE_LLM_PROVIDER gemini, ollama or scripted
  KOTAE_LLM_MODEL    Model name
  KOTAE_HOST, KOTAE_PORT, KOTAE_DEBUG

Examples:
  kotae server
  kotae upload notes.md report.pdf
  kotae ask "What is Python good for?"
  kotae ask --output json "compare python and go"
  kotae search --fuzzy pyhton
  kotae history --limit 5
  kotae status --output json`)
}
