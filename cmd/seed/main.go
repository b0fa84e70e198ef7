package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/LeventeLantos/sms-dispatch/internal/config"
	"github.com/LeventeLantos/sms-dispatch/internal/logger"
	"github.com/LeventeLantos/sms-dispatch/internal/repo"
)

//go:embed seed.yaml
var defaultFixtures []byte

func main() {
	var file string
	flag.StringVar(&file, "file", "", "YAML fixtures to load (defaults to the bundled sample data)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	data := defaultFixtures
	if file != "" {
		if data, err = os.ReadFile(file); err != nil {
			log.Fatal("read fixtures", "file", file, "error", err)
		}
	}
	f, err := parseFixtures(data)
	if err != nil {
		log.Fatal("load fixtures", "error", err)
	}

	ctx := context.Background()
	db, err := repo.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal("open database", "error", err)
	}
	defer db.Close()

	sum, err := apply(ctx, repo.NewStore(db), f)
	if err != nil {
		log.Fatal("seed failed", "error", err)
	}
	log.Info("seed completed",
		"contacts", sum.Contacts,
		"groups", sum.Groups,
		"members", sum.Members,
		"templates", sum.Templates,
	)
}
