// Command climatetool inspects a climate dataset without starting the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/config"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/db"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/repository"
	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
)

const usage = `usage: %s <command>
  verify   check that the dataset has the measurement and station tables
  summary  print station count, date range and overall temperature stats
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "env file error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintf(stderr, usage, args[0])
		return 1
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 1
	}

	conn, err := db.Open(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "db open: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	switch args[1] {
	case "verify":
		if err := db.VerifySchema(ctx, conn); err != nil {
			fmt.Fprintf(stderr, "verify: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "schema ok")
	case "summary":
		if err := db.VerifySchema(ctx, conn); err != nil {
			fmt.Fprintf(stderr, "verify: %v\n", err)
			return 1
		}
		if err := printSummary(ctx, stdout, repository.NewRepository(conn)); err != nil {
			fmt.Fprintf(stderr, "summary: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[1])
		return 1
	}
	return 0
}

func printSummary(ctx context.Context, w io.Writer, repo repository.ClimateRepository) error {
	stations, err := repo.AllStations(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "stations: %d\n", len(stations))

	latest, err := repo.MaxMeasurementDate(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Fprintln(w, "measurements: none")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "latest date: %s\n", types.FormatDate(latest))

	active, err := repo.MostActiveStation(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "most active station: %s\n", active)

	agg, err := repo.AggregateTemps(ctx, time.Time{}, nil)
	if err != nil {
		return err
	}
	if !agg.Empty() {
		fmt.Fprintf(w, "tobs: min %.1f avg %.2f max %.1f\n", *agg.Min, *agg.Avg, *agg.Max)
	}
	return nil
}
