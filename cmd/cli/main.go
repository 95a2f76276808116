package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/gymgridgo/internal/app"
	"github.com/vk/gymgridgo/internal/cli"
	"github.com/vk/gymgridgo/internal/config"
	"github.com/vk/gymgridgo/internal/hclloader"
	"github.com/vk/gymgridgo/internal/yamlloader"
)

// main is the entrypoint for the gymgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	gymgridApp, err := app.NewApp(outW, appConfig, loaderFor(appConfig.PipelinePath))
	if err != nil {
		return err
	}

	return gymgridApp.Run(context.Background())
}

// loaderFor picks the pipeline loader by file extension; directories and
// anything that is not YAML default to HCL.
func loaderFor(path string) config.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlloader.New()
	default:
		return hclloader.New()
	}
}
