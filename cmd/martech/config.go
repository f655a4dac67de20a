package martech

import (
	"fmt"
	"os"
	"strings"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/config"
)

func handleConfigCommand(args []string) error {
	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return nil
	}

	switch args[0] {
	case "show":
		return handleConfigShow()
	case "set":
		return handleConfigSet(args[1:])
	case "directory":
		return handleConfigDirectory()
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func printConfigUsage() {
	fmt.Println("usage: martech config [-h] {show,set,directory} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {show,set,directory}")
	fmt.Println("                        Configuration management commands")
	fmt.Println("    show                Print config.yaml contents")
	fmt.Println("    set                 Set a config value (e.g. general.default_model gemini-2.5-flash)")
	fmt.Println("    directory           Print the configuration directory path")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}

func handleConfigShow() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Config file does not exist.")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

func handleConfigSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: martech config set <key> <value>")
	}
	key, value := args[0], args[1]

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "general.default_model":
		cfg.General.DefaultModel = value
	case "general.port":
		if _, err := fmt.Sscanf(value, "%d", &cfg.General.Port); err != nil {
			return fmt.Errorf("invalid port: %q", value)
		}
	case "providers.gemini.api_key":
		if cfg.Providers["gemini"] == nil {
			cfg.Providers["gemini"] = make(config.ProviderConfig)
		}
		cfg.Providers["gemini"]["api_key"] = value
	default:
		return fmt.Errorf("unknown config key: %s (known: general.default_model, general.port, providers.gemini.api_key)", key)
	}

	if err := config.SaveAppConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = "****"
	}
	fmt.Printf("Set %s = %s\n", key, shown)
	return nil
}

func handleConfigDirectory() error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	fmt.Println(dir)
	return nil
}
