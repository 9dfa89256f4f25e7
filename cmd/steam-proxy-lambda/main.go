// Command steam-proxy-lambda serves the endpoint router as an AWS Lambda or
// Netlify Go function. Configuration comes from the environment, with an
// optional TOML file.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"steam-proxy-go/internal/client"
	"steam-proxy-go/internal/config"
	"steam-proxy-go/internal/lambda"
	"steam-proxy-go/internal/logging"
	"steam-proxy-go/internal/router"
)

// Set by goreleaser ldflags.
var version = "dev"

func main() {
	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("steam-proxy-lambda"),
		kong.Description("Serverless endpoint router for the Steam Web API and Storefront."),
		kong.Vars{"version": version},
	)

	cfg, err := config.LoadOrDefault(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "steam-proxy-lambda: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg)

	// No metrics registry: nothing scrapes a function instance.
	steam := client.NewSteamClient(cfg, logger, nil)
	r, err := router.New(cfg, steam, nil, logger)
	if err != nil {
		logger.Error("router init failed", "err", err)
		os.Exit(1)
	}
	if !r.KeyConfigured() {
		logger.Warn("STEAM_API_KEY not set, keyed endpoints will answer 500")
	}

	awslambda.Start(lambda.NewHandler(r, logger).Handle)
}
