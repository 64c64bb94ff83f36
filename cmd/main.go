package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/fatih/color"
	"github.com/go-faker/faker/v4"
	"github.com/spf13/pflag"

	"filevault/cli"
	"filevault/config"
	"filevault/metadata"
	"filevault/vault"
)

var (
	configPath           string
	shouldReset, verbose bool
	shouldSeed           bool
	seedNumRecords       int
)

func eraseIndexFolder(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		panic(err)
	}
}

func seedVaultWithTestRecords(v *vault.Vault) {
	target := v.DefaultTarget()
	for range seedNumRecords {
		name := faker.Word() + "-" + faker.Word() + ".txt"
		rec := metadata.New(name, path.Join("/", faker.Word(), name), int64(len(faker.Paragraph())))
		rec.Categories = []string{faker.Word()}
		if err := v.Register(rec, target); err != nil {
			slog.Warn("seed record rejected", "filename", name, "error", err)
		}
	}
}

func main() {
	setupFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if verbose || cfg.Interface.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if !cfg.Interface.Color {
		color.NoColor = true
	}

	if shouldReset {
		eraseIndexFolder(cfg.Storage.IndexDir)
	}

	v, err := vault.New(vault.Options{Config: cfg, Logger: logger})
	if err != nil {
		logger.Error("create vault", "error", err)
		os.Exit(1)
	}
	if err := v.Load(); err != nil {
		logger.Error("load index snapshots", "dir", cfg.Storage.IndexDir, "error", err)
		os.Exit(1)
	}

	if shouldSeed {
		seedVaultWithTestRecords(v)
	}

	scanner := bufio.NewScanner(os.Stdin)
	demo := cli.NewCli(scanner, os.Stdout, v)
	demo.Start()
}

func setupFlags() {
	pflag.StringVar(&configPath, "config", "", "Path to the YAML configuration file (default $"+config.EnvVar+").")
	pflag.BoolVar(&shouldReset, "reset", false, "Erase the index snapshots before startup.")
	pflag.BoolVar(&shouldSeed, "seed", false, "Seed the indexes using records created with go-faker.")
	pflag.IntVar(&seedNumRecords, "records", 1000, "Amount of records to seed the indexes with upon startup.")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Log debug messages to stderr.")
	pflag.Usage = func() {
		fmt.Println("\nfilevault CLI\n\nArguments:")
		pflag.PrintDefaults()
	}
	pflag.Parse()
}
