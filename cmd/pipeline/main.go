package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"MarketPulse/internal/config"
	"MarketPulse/internal/correlation"
	"MarketPulse/internal/feed"
	"MarketPulse/internal/metrics"
	"MarketPulse/internal/pipeline"
	"MarketPulse/internal/report"
	"MarketPulse/internal/scheduler"
	"MarketPulse/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketPulse starting...")

	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	var fetcher feed.Fetcher
	if cfg.Feed.Source == "mock" {
		fetcher = &feed.MockFetcher{Price: 100}
	} else {
		fetcher = feed.NewYahooFetcher(cfg.Feed.Proxy)
	}
	log.Printf("[INFO] price feed: %s", fetcher.Name())

	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] init sqlite store: %v", err)
	}
	defer st.Close()

	mp := metrics.DefaultParams()
	mp.OscPeriod = cfg.RSIPeriod
	me, err := metrics.NewEngine(mp)
	if err != nil {
		log.Fatalf("[FATAL] init metrics engine: %v", err)
	}
	ce, err := correlation.NewEngine(correlation.DefaultParams())
	if err != nil {
		log.Fatalf("[FATAL] init correlation engine: %v", err)
	}

	p := pipeline.New(fetcher, st, me, ce, pipeline.Options{
		Tickers:      cfg.Tickers,
		LookbackDays: cfg.LookbackDays,
		SnapshotDays: cfg.Snapshot.WindowDays,
		MetricsCSV:   cfg.Snapshot.MetricsCSV,
		PricesCSV:    cfg.Snapshot.PricesCSV,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Schedule.Cron == "" {
		// One-shot batch run, the default deployment mode.
		sum, err := p.Run(ctx)
		if err != nil {
			log.Fatalf("[FATAL] pipeline run: %v", err)
		}
		log.Printf("[INFO] pipeline finished\n%s", report.FormatRunSummary(sum))
		return
	}

	sched := scheduler.New(ctx, p)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing pipeline now")
		go sched.RunNow()
	}

	log.Println("[INFO] MarketPulse is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] MarketPulse stopped")
}
