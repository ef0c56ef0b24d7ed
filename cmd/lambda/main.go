package main

import (
	"context"

	"github.com/ammiranda/notetree/config"
	"github.com/ammiranda/notetree/internal/app"
	"github.com/ammiranda/notetree/internal/lambda"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()

	// Secrets Manager first when AWS_SECRET_NAME is set, environment otherwise
	cfgProvider, err := config.NewAWSConfigProvider(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create config provider")
	}

	serverCfg, err := config.GetServerConfig(ctx, cfgProvider)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read server configuration")
	}
	logger := app.NewLogger(serverCfg.LogLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	a, err := app.New(ctx, cfgProvider, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize")
	}

	// Create handler with the notes service
	handler := lambda.NewHandler(a.Service, logrus.NewEntry(logger))

	// Start Lambda
	awslambda.Start(handler.Handle)
}
