package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/riskwatch/riskwatch/internal/api"
	"github.com/riskwatch/riskwatch/internal/engine"
	"github.com/riskwatch/riskwatch/internal/weatherapi"
)

var cli struct {
	APIBaseURL      string        `name:"api-base-url" env:"API_BASE_URL" default:"http://localhost:8000" help:"Base URL of the weather risk API."`
	Port            string        `env:"PORT" default:"8080" help:"HTTP server port."`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" default:"5m" help:"Background snapshot refresh period."`
	NoPoll          bool          `help:"Disable periodic refresh (initial load only, for local dev)."`
	Once            bool          `help:"Load once, print the snapshot as JSON, and exit."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("riskwatch"),
		kong.Description("Disaster risk dashboard fed by a polled weather API."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	client := weatherapi.NewClient(cli.APIBaseURL)
	eng := engine.New(client, cli.RefreshInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cli.Once {
		eng.InitialLoad(ctx)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(eng.State()); err != nil {
			log.Fatalf("encode snapshot: %v", err)
		}
		return
	}

	if cli.NoPoll {
		log.Println("polling disabled (--no-poll)")
		eng.InitialLoad(ctx)
	} else {
		go eng.Run(ctx)
	}

	server := api.NewServer(eng, cli.Port)
	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
