package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/codegangsta/cardfetcher/internal/commands"
	"github.com/codegangsta/cardfetcher/internal/config"
	"github.com/codegangsta/cardfetcher/internal/dispatch"
	"github.com/codegangsta/cardfetcher/internal/extract"
	"github.com/codegangsta/cardfetcher/internal/keyword"
	"github.com/codegangsta/cardfetcher/internal/metrics"
	"github.com/codegangsta/cardfetcher/internal/render"
	"github.com/codegangsta/cardfetcher/internal/scryfall"
	"github.com/codegangsta/cardfetcher/internal/telegram"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	keywordsPath := flag.String("keywords", "", "path to keyword table (overrides keywords_file)")
	flag.Parse()

	if *configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(homeDir, ".config", "cardfetcher", "config.yaml")
	}

	fmt.Println("cardfetcher starting...")
	fmt.Printf("Config: %s\n", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	slog.Info("config loaded",
		"allowlist_count", len(cfg.Allowlist),
		"debug", cfg.Debug,
		"policy", cfg.Match.Policy,
		"scryfall", cfg.Scryfall.BaseURL,
	)

	// The keyword table must be in place before any message is handled.
	kwFile := cfg.KeywordsFile
	if *keywordsPath != "" {
		kwFile = *keywordsPath
	} else if !filepath.IsAbs(kwFile) {
		kwFile = filepath.Join(filepath.Dir(*configPath), kwFile)
	}
	keywords, err := keyword.Load(kwFile)
	if err != nil {
		slog.Error("failed to load keyword table", "path", kwFile, "error", err)
		os.Exit(1)
	}
	metrics.KeywordTableSize.Set(float64(keywords.Len()))
	slog.Info("keyword table loaded", "path", kwFile, "count", keywords.Len())

	policies, err := cfg.Policies()
	if err != nil {
		slog.Error("invalid match config", "error", err)
		os.Exit(1)
	}

	source := scryfall.NewClient(scryfall.Options{
		BaseURL:   cfg.Scryfall.BaseURL,
		Timeout:   cfg.Scryfall.Timeout,
		UserAgent: cfg.Scryfall.UserAgent,
		Logger:    slog.Default(),
	})
	cards := dispatch.New(source, policies, slog.Default())

	bot, err := telegram.New(cfg.Telegram.Token, cfg.Allowlist, cfg.Debug, slog.Default())
	if err != nil {
		slog.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	if cfg.ChatLogFile != "" {
		chatLog, closeChatLog, err := openChatLog(cfg.ChatLogFile)
		if err != nil {
			slog.Error("failed to open chat log", "path", cfg.ChatLogFile, "error", err)
			os.Exit(1)
		}
		defer closeChatLog()
		bot.SetChatLog(chatLog)
	}

	cmdRouter := commands.NewRouter()
	cmdRouter.Register(commands.NewHelpCommand())
	cmdRouter.Register(commands.NewKeywordCommand(keywords))
	cmdRouter.Register(commands.NewRollCommand())

	var opsServer *metrics.Server
	if cfg.Metrics.Addr != "" {
		opsServer = metrics.NewServer(cfg.Metrics.Addr, slog.Default())
		opsServer.Start()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	bot.SetHandler(func(msgCtx context.Context, chatID int64, userID int64, text string) {
		resp, handled, err := cmdRouter.Dispatch(msgCtx, chatID, text)
		if handled {
			metrics.MessagesTotal.WithLabelValues("command").Inc()
			if err != nil {
				slog.Error("command error", "chat_id", chatID, "error", err)
				_ = bot.SendText(chatID, fmt.Sprintf("Error: %v", err), false)
				return
			}
			if resp != nil {
				if err := bot.SendText(chatID, resp.Text, resp.Silent); err != nil {
					slog.Error("failed to send command response", "chat_id", chatID, "error", err)
				}
			}
			return
		}

		if !extract.HasTokens(text) {
			metrics.MessagesTotal.WithLabelValues("ignored").Inc()
			return
		}
		metrics.MessagesTotal.WithLabelValues("queries").Inc()

		stopTyping := bot.TypingLoop(chatID)
		defer stopTyping()

		n := cards.Handle(msgCtx, text, func(p render.Payload) {
			bot.SendPayload(chatID, p)
		})
		slog.Debug("message answered", "chat_id", chatID, "user_id", userID, "queries", n)
	})

	slog.Info("cardfetcher started, connecting to telegram")

	err = bot.Start(ctx)

	if opsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("ops server shutdown", "error", err)
		}
		stop()
	}

	if err != nil {
		slog.Error("telegram bot error", "error", err)
		os.Exit(1)
	}
	slog.Info("cardfetcher stopped")
}

// setupLogger configures slog based on config settings
func setupLogger(cfg *config.Config) {
	var level slog.Level
	if cfg.Debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		// Write to both stdout and file
		w = io.MultiWriter(os.Stdout, f)
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(w, opts)
	slog.SetDefault(slog.New(handler))
}

// openChatLog returns a JSON logger appending to path
func openChatLog(path string) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { f.Close() }, nil
}
