// Command energyprep builds the forecasting dataset for the given regions.
//
//	energyprep [-rates 60:20:20] [-force] [-config file] [-env file] region...
//
// Regions default to application.regions from the configuration.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tigerroll/surfin-energy/internal/app"
	"github.com/tigerroll/surfin-energy/internal/config"
	"github.com/tigerroll/surfin-energy/pkg/batch/support/util/logger"
)

// embeddedConfig is used unless -config names another file.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("energyprep", flag.ContinueOnError)
	rates := fs.String("rates", "", "train:valid:test split rates, e.g. 60:20:20")
	force := fs.Bool("force", false, "rebuild the dataset even if the output already exists")
	configPath := fs.String("config", "", "YAML configuration file replacing the embedded one")
	envPath := fs.String("env", os.Getenv("ENV_FILE_PATH"), ".env file loaded before the configuration")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: energyprep [flags] region...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	overrides := config.Overrides{Regions: fs.Args(), Force: *force}
	if *rates != "" {
		r, err := config.ParseRates(*rates)
		if err != nil {
			fmt.Fprintln(fs.Output(), err)
			return 2
		}
		overrides.Rates = &r
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Warnf("Received signal '%v'. Attempting to stop the job...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return app.Run(ctx, embeddedConfig, app.Options{
		EnvFilePath:    *envPath,
		ConfigFilePath: *configPath,
		Overrides:      overrides,
	})
}
