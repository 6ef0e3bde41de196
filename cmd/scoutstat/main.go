// Package main provides the scoutstat CLI for querying scouting data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	scoutstatcmd "github.com/ahrav/go-scout/internal/cmd/scoutstat"
)

func main() {
	log.SetPrefix("scoutstat: ")

	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err == nil {
		log.Println("INFO: loaded .env")
	}

	cfg, err := scoutstatcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scoutstatcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
