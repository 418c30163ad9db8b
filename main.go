package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/saitej13sai/donizo-material-scraper/api"
	"github.com/saitej13sai/donizo-material-scraper/config"
	"github.com/saitej13sai/donizo-material-scraper/db"
	"github.com/saitej13sai/donizo-material-scraper/exporter"
	"github.com/saitej13sai/donizo-material-scraper/models"
	"github.com/saitej13sai/donizo-material-scraper/scheduler"
	"github.com/saitej13sai/donizo-material-scraper/scraper"
)

func main() {
	configPath := flag.String("config", "config/scraper_config.yaml", "Path to the YAML sites configuration")
	site := flag.String("site", "all", "Site to scrape (all | castorama | leroymerlin | manomano)")
	categories := flag.String("categories", "", "Comma-separated category filter, e.g. tiles,sinks,paint")
	limit := flag.Int("limit-per-category", scraper.DefaultLimitPerCategory, "Maximum records per (site, category) pair")
	out := flag.String("out", "data/materials.json", "Output JSON file path")
	jsonl := flag.String("jsonl", "", "Optional JSONL vector-doc output path")
	store := flag.Bool("store", false, "Also persist records to PostgreSQL (DATABASE_URL or DB_* env)")
	serve := flag.Bool("serve", false, "Serve the review/search API after scraping")
	addr := flag.String("addr", ":8000", "Listen address for --serve")
	every := flag.Duration("every", 0, "Re-run the scrape on this interval (e.g. 12h); 0 runs once")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	opts := scraper.Options{
		LimitPerCategory: *limit,
		Categories:       splitList(*categories),
	}
	if *site != "" && *site != "all" {
		opts.Sites = []string{*site}
	}

	runOnce := func(ctx context.Context) ([]models.Material, error) {
		runner := scraper.NewRunner(cfg)
		defer runner.Close()

		items, err := runner.Run(ctx, opts)
		if err != nil {
			return items, err
		}

		if err := exporter.WriteJSON(items, *out); err != nil {
			return items, err
		}
		log.Printf("[done] Wrote %d records -> %s\n", len(items), *out)

		if *jsonl != "" {
			if err := exporter.WriteJSONL(items, *jsonl); err != nil {
				return items, err
			}
			log.Printf("[done] Wrote vector docs -> %s\n", *jsonl)
		}

		if *store {
			if err := storeMaterials(items); err != nil {
				log.Printf("[warn] PostgreSQL store failed: %v\n", err)
			}
		}

		if len(items) < 100 {
			log.Println("[warn] Fewer than 100 records. Increase max_pages/limits or retry later.")
		}
		return items, nil
	}

	if *every > 0 {
		var live *api.Live
		if *serve {
			live = api.NewLive()
			go func() {
				log.Printf("Starting materials API at %s\n", *addr)
				if err := api.NewLiveServer(live).Run(*addr); err != nil {
					log.Fatalf("API server failed: %v\n", err)
				}
			}()
		}

		sched := scheduler.New(*every, func(ctx context.Context) error {
			items, err := runOnce(ctx)
			if live != nil {
				// Serve whatever was gathered, even on a partial run.
				live.Update(items)
			}
			return err
		})
		sched.Start()
		defer sched.Stop()

		log.Printf("Scheduler started, scraping every %v\n", *every)
		waitForSignal()
		return
	}

	items, err := runOnce(context.Background())
	if err != nil {
		log.Fatalf("Scrape failed: %v\n", err)
	}

	if *serve {
		log.Printf("Starting materials API at %s\n", *addr)
		if err := api.NewServer(items).Run(*addr); err != nil {
			log.Fatalf("API server failed: %v\n", err)
		}
	}
}

func storeMaterials(items []models.Material) error {
	database, err := db.New(os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.SaveMaterials(items); err != nil {
		return err
	}
	log.Printf("[done] Stored %d records in PostgreSQL\n", len(items))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down")
}
