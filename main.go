package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"videoSeek/config"
	"videoSeek/rag"
	"videoSeek/server"
	"videoSeek/storage"
	"videoSeek/youtube"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !cfg.HasValidAPI() {
		log.Warn().Msg("API_KEY not set; LLM-backed stores and ranking will not work, using memory store")
	}

	store := storage.New(cfg, log.With().Str("component", "storage").Logger())
	source := youtube.NewClient(cfg, log.With().Str("component", "youtube").Logger())
	completer := rag.NewOpenAICompleter(cfg)
	expander := rag.NewKeywordExpander(completer, log.With().Str("component", "expander").Logger())
	retriever := rag.NewRetriever(store, cfg)
	ranker := rag.NewRanker(completer, cfg)

	svc := server.NewService(store, source, expander, retriever, ranker,
		log.With().Str("component", "server").Logger())

	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("store", cfg.Store).
		Str("ranker_mode", cfg.RankerMode).
		Msg("videoSeek listening")
	if err := http.ListenAndServe(cfg.ListenAddr, svc.Routes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
