// Package martech implements the CLI entry points for the audit server.
package martech

import (
	"fmt"
	"os"
)

// Execute is the main entry point for the CLI.
func Execute() error {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage()
		if len(os.Args) < 2 {
			return fmt.Errorf("no command provided")
		}
		return nil
	}

	command := os.Args[1]
	switch command {
	case "serve":
		return handleServeCommand(os.Args[2:])
	case "config":
		return handleConfigCommand(os.Args[2:])
	case "version":
		printVersion()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("usage: martech [-h] {serve,config,version} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {serve,config,version}")
	fmt.Println("                        MarTech Analysis Agent commands")
	fmt.Println("    serve               Start the audit web server")
	fmt.Println("    config              Manage configuration")
	fmt.Println("    version             Print version information")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}
