// The seed binary loads the venue catalog from a YAML file into the database.
// It is idempotent: venues whose slug already exists are skipped.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"lieux_backend/internal/venues/repository"
	venuessvc "lieux_backend/internal/venues/service"
	"lieux_backend/migrations"
	"lieux_backend/platform/config"
	"lieux_backend/platform/db"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/sanitize"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Venues []seedVenue `yaml:"venues"`
}

type seedVenue struct {
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Region      string   `yaml:"region"`
	Description string   `yaml:"description"`
	Capacity    int      `yaml:"capacity"`
	Features    []string `yaml:"features"`
	Published   bool     `yaml:"published"`
}

func main() {
	var file string
	flag.StringVar(&file, "file", "seed/venues.yaml", "path to the venue seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	raw, err := os.ReadFile(file)
	if err != nil {
		log.Error("failed to read seed file", "file", file, "error", err)
		os.Exit(1)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Error("failed to parse seed file", "file", file, "error", err)
		os.Exit(1)
	}
	if len(seed.Venues) == 0 {
		log.Warn("seed file contains no venues", "file", file)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.RunMigrations(ctx, cfg, migrations.FS); err != nil {
		log.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := repository.New(pool)
	created, skipped := 0, 0

	for _, v := range seed.Venues {
		slug := v.Slug
		if slug == "" {
			slug = venuessvc.Slugify(v.Name)
		}

		if _, err := repo.GetBySlug(ctx, slug); err == nil {
			skipped++
			continue
		}

		features := make([]string, 0, len(v.Features))
		for _, f := range v.Features {
			features = append(features, sanitize.Text(f))
		}

		_, err := repo.Create(ctx, repository.CreateVenueParams{
			Slug:        slug,
			Name:        sanitize.Text(v.Name),
			Type:        v.Type,
			Region:      sanitize.Text(v.Region),
			Description: sanitize.Text(v.Description),
			Capacity:    v.Capacity,
			Features:    features,
			Published:   v.Published,
		})
		if err != nil {
			log.Error("failed to seed venue", "slug", slug, "error", err)
			os.Exit(1)
		}
		created++
		log.Info("venue seeded", "slug", slug)
	}

	log.Info("seed complete", "created", created, "skipped", skipped)
}
