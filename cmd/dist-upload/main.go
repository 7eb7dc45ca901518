package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-io/steps-dist-upload/deploy"
	"github.com/bitrise-io/steps-dist-upload/export"
	"github.com/bitrise-io/steps-dist-upload/stepconf"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.NewLogger()
	envRepo := env.NewRepository()
	exporter := export.NewExporter(command.NewFactory(envRepo))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deployer := deploy.NewDeployer(
		stepconf.NewInputParser(envRepo),
		envRepo,
		logger,
		pathutil.NewPathChecker(),
		pathutil.NewPathProvider(),
		&exporter,
		deploy.DefaultClientFactory,
	)
	if err := deployer.Deploy(ctx); err != nil {
		logger.Println()
		logger.Errorf("Upload failed: %s", err)
		return 1
	}
	return 0
}
