// Package main is the Tanya CLI entry point.
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

	"go.uber.org/zap"

	"github.com/hyperjump/tanya/internal/chat"
	"github.com/hyperjump/tanya/internal/cli"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/knowledge"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/server"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/tanya/config.yaml"
	defaultServerURL  = "http://localhost:8000"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development), and falls back to built-in
// defaults when neither file exists. .env in the current directory and TANYA_* variables
// override file values. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := loadConfigFile(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func loadConfigFile(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
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
	case "logs":
		runLogs()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("tanya version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (matches, scores, cache misses)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Handler, components.Log, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: tanya ask [flags] <message>\n\n")
	fmt.Fprintf(fs.Output(), "Message is all remaining arguments joined by spaces. Multi-word messages work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  tanya ask how do I return an item
  tanya ask --output json "where is my package?"
  tanya ask --server "" do you accept paypal      # answer without a running server
`)
}

// buildMessage joins all positional args with spaces so multi-word messages
// work the same with or without shell quoting.
func buildMessage(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the message
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
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

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = answer directly without a running server)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	message := buildMessage(fs.Args())
	if message == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	ctx := context.Background()

	var reply *models.ChatReply
	if *serverURL != "" {
		// Use HTTP API when server is running (avoids a second writer on the log database).
		var err error
		reply, err = cli.NewClient(*serverURL).Ask(ctx, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := directComponents(ctx, *configPath)
		defer logger.Sync()
		defer components.Close()
		var err error
		reply, err = components.Handler.Handle(ctx, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteReply(os.Stdout, reply, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runLogs() {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the database directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)
	ctx := context.Background()

	var exchanges []*models.ChatExchange
	if *serverURL != "" {
		var err error
		exchanges, err = cli.NewClient(*serverURL).Logs(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Logs failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		log, err := storage.NewSQLiteLog(cfg.Storage.DatabasePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open conversation log: %v\n", err)
			os.Exit(1)
		}
		defer log.Close()
		exchanges, err = log.ReadAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Logs failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteExchanges(os.Stdout, exchanges, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)
	ctx := context.Background()

	var status *models.Status
	if *serverURL != "" {
		var err error
		status, err = cli.NewClient(*serverURL).Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := directComponents(ctx, *configPath)
		defer logger.Sync()
		defer components.Close()
		var err error
		status, err = server.BuildStatus(ctx, components.Handler, components.Log, components.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// directComponents loads config and initializes everything in-process, exiting on failure.
func directComponents(ctx context.Context, configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, logger
}

// Components holds initialized services.
type Components struct {
	Config        *config.Config
	Log           storage.ConversationLog
	Embedder      embedding.Embedder
	KnowledgeBase *knowledge.KnowledgeBase
	Handler       *chat.Handler
}

// Close releases the conversation log and the embedder.
func (c *Components) Close() {
	if c.Log != nil {
		_ = c.Log.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// embeddingOptions maps config onto embedder options.
func embeddingOptions(cfg *config.Config) embedding.Options {
	return embedding.Options{
		Provider:    cfg.Embedding.Provider,
		ModelPath:   cfg.Embedding.ModelPath,
		VocabPath:   cfg.Embedding.VocabPath,
		Dimensions:  cfg.Embedding.Dimensions,
		MaxTokens:   cfg.Embedding.MaxTokens,
		OllamaURL:   cfg.Embedding.OllamaURL,
		OllamaModel: cfg.Embedding.OllamaModel,
	}
}

// newEmbedder creates the configured embedder. A provider that cannot be brought up (for
// example ONNX without CGO or a missing model file) fails startup with embedding.ErrEncoding;
// the hash embedder is only used when configured explicitly.
func newEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, embedding.Options, error) {
	opts := embeddingOptions(cfg)
	emb, err := embedding.New(opts, logger)
	if err != nil {
		return nil, opts, err
	}
	if opts.Provider == embedding.ProviderHash {
		logger.Warn("hash embedder configured: matching is by exact text only, not meaning")
	}
	return emb, opts, nil
}

// withCache wraps emb in the configured read-through cache. An unreachable Redis falls back
// to the in-process LRU cache.
func withCache(ctx context.Context, emb embedding.Embedder, cfg *config.Config, modelKey string, logger *zap.Logger) embedding.Embedder {
	switch cfg.Embedding.Cache {
	case "none", "off":
		return emb
	case "redis":
		ttl := time.Duration(cfg.Embedding.RedisTTL) * time.Second
		rc, err := embedding.NewRedisCache(ctx, cfg.Embedding.RedisAddr, modelKey, ttl, logger)
		if err == nil {
			logger.Info("embedding cache", zap.String("type", "redis"), zap.String("addr", cfg.Embedding.RedisAddr))
			return embedding.NewCachedEmbedder(emb, rc)
		}
		logger.Warn("redis cache unavailable, falling back to lru", zap.Error(err))
		cfg.Embedding.Cache = "lru"
	}
	return embedding.NewCachedEmbedder(emb, embedding.NewLRUCache(cfg.Embedding.CacheSize))
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	logger = utils.OrNop(logger)

	pairs, err := knowledge.LoadPairs(cfg.Knowledge.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	emb, opts, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	emb = withCache(ctx, emb, cfg, opts.ModelKey(), logger)

	kb, err := knowledge.BuildCached(ctx, pairs, emb, opts.ModelKey(), cfg.Knowledge.EmbeddingsPath, logger)
	if err != nil {
		_ = emb.Close()
		return nil, fmt.Errorf("failed to build knowledge base: %w", err)
	}
	logger.Info("knowledge base loaded",
		zap.Int("entries", kb.Len()),
		zap.Int("dimensions", kb.Dimensions()),
		zap.String("provider", opts.Provider))

	log, err := storage.NewSQLiteLog(cfg.Storage.DatabasePath)
	if err != nil {
		_ = emb.Close()
		return nil, fmt.Errorf("failed to initialize conversation log: %w", err)
	}

	handler, err := chat.NewHandler(kb, emb, log, chat.WithLogger(logger))
	if err != nil {
		_ = log.Close()
		_ = emb.Close()
		return nil, err
	}
	return &Components{
		Config:        cfg,
		Log:           log,
		Embedder:      emb,
		KnowledgeBase: kb,
		Handler:       handler,
	}, nil
}

func printUsage() {
	fmt.Println(`tanya - Semantic FAQ chatbot

Usage:
  tanya server [flags]           Start the HTTP server
  tanya ask [flags] <message>    Ask a question
  tanya logs [flags]             Show the conversation log
  tanya status [flags]           Show knowledge base and log status
  tanya version                  Show version
  tanya help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tanya/config.yaml)
  --debug            Enable debug logging

Ask, Logs and Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") to run without a server.
  --output string    Output format: text or json (default: text)

Environment:
  TANYA_PORT, TANYA_DB_PATH, TANYA_EMBEDDING_PROVIDER, TANYA_KNOWLEDGE_PATH,
  TANYA_REDIS_ADDR, TANYA_DEBUG override the config file. A .env file in the
  current directory is loaded first.

Examples:
  tanya server
  tanya ask "How can I track my order?"
  tanya ask --output json do you offer support
  tanya logs --output json
  tanya status`)
}
