package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"tripflow/internal/cache"
	"tripflow/internal/config"
	"tripflow/internal/gateway"
	"tripflow/internal/llm"
	"tripflow/internal/planner"
	"tripflow/internal/tools"
	"tripflow/internal/trip"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	port := flag.String("port", "", "server port (overrides config)")
	offline := flag.Bool("offline", false, "run without a planner model (deterministic only)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *offline {
		cfg.Offline = true
	}

	logger := log.New(os.Stderr, "tripflow ", log.LstdFlags)
	ctx := context.Background()

	var client llm.Client
	if !cfg.Offline {
		gem, err := llm.NewGeminiClient(ctx, cfg.Model)
		if err != nil {
			log.Fatalf("init planner model: %v", err)
		}
		client = llm.Wrap(gem,
			llm.WithLogging(logger),
			llm.WithRetry(cfg.LLMRetries, 0),
			llm.RateLimit(cfg.LLMRPS, 1),
		)
		defer client.Close()
	} else {
		logger.Printf("offline mode: planning runs take the deterministic path")
	}

	visaCache := cache.NewLRU[string, trip.VisaFacts](256, cfg.VisaCacheTTL)
	registry := tools.NewSet(tools.Providers{}, tools.Options{
		CallTimeout: cfg.ToolTimeout,
		VisaCache:   visaCache,
	})

	hub := gateway.NewHub()
	p := &planner.Planner{
		LLM:                  client,
		Tools:                registry,
		MaxIterations:        cfg.MaxIterations,
		MaxToolCallsPerRound: cfg.MaxToolCallsPerRound,
		Log:                  logger,
		Events:               hub,
	}

	mux := gateway.New(p, hub, logger).Mux()
	h2s := &http2.Server{}
	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: h2c.NewHandler(mux, h2s),
	}
	logger.Printf("listening on %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
