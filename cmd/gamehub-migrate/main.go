// gamehub-migrate переносит данные клиентского хранилища (localStorage
// экспорт) в реляционную базу данных.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration file")
	createConfig := flag.Bool("create-config", false, "write a sample config file and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	showHelp := flag.Bool("help", false, "print usage and exit")
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("gamehub-migrate v%s\n", version)
		return
	}
	if *showHelp {
		printHelp()
		return
	}
	if *createConfig {
		if err := createConfigTemplate(*configPath); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("✓ Created sample config: %s\n", *configPath)
		fmt.Println("Edit the file with your database credentials and run:")
		fmt.Printf("  gamehub-migrate -config %s migrate\n", *configPath)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		printHelp()
		os.Exit(1)
	}

	command := args[0]
	if command == "version" {
		fmt.Printf("gamehub-migrate v%s\n", version)
		return
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var cmdErr error
	switch command {
	case "migrate":
		cmdErr = runMigrate(ctx, config, tableArg(args))
	case "rollback":
		if len(args) < 2 {
			fatal("rollback requires a table name")
		}
		cmdErr = runRollback(ctx, config, args[1])
	case "status":
		cmdErr = runStatus(ctx, config)
	case "health":
		cmdErr = runHealth(ctx, config)
	case "schema":
		cmdErr = runSchema(ctx, config)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}

	if cmdErr != nil {
		fatal("%v", cmdErr)
	}
}

func tableArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return ""
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
