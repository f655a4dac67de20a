package martech

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/config"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/launcher"
)

const defaultPort = 8080

func handleServeCommand(args []string) error {
	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	port := serveCmd.Int("port", 0, "Port to run the server on")
	model := serveCmd.String("model", "", "Gemini model to use")
	debug := serveCmd.Bool("debug", false, "Enable debug logging")

	if err := serveCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	appCfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Refuse to start without a credential rather than sending
	// unauthenticated requests later.
	apiKey := config.ResolveAPIKey(appCfg)
	if apiKey == "" {
		return fmt.Errorf("no Gemini API key configured: set GEMINI_API_KEY (or GOOGLE_API_KEY), or add providers.gemini.api_key to config.yaml")
	}

	if *port == 0 {
		*port = appCfg.General.Port
	}
	if *port == 0 {
		*port = defaultPort
	}
	if *model == "" {
		*model = appCfg.General.DefaultModel
	}

	return launcher.RunWeb(context.Background(), &launcher.WebConfig{
		Port:   *port,
		Model:  *model,
		APIKey: apiKey,
	})
}
