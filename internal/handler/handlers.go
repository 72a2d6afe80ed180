package handler

import (
	"github.com/ndedov/go-stash-sync/internal/config"
	"github.com/ndedov/go-stash-sync/internal/handler/grpc"
	"github.com/ndedov/go-stash-sync/internal/handler/http"
	"github.com/ndedov/go-stash-sync/internal/logger"
	"github.com/ndedov/go-stash-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

func NewHandlers(services *service.Services, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, cfg.App, logger)
	}
	if cfg.Server.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
