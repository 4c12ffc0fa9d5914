package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/alaaeid/catalog-service/catalog/config"
	"github.com/alaaeid/catalog-service/catalog/internal/handler"
	"github.com/alaaeid/catalog-service/catalog/internal/repository"
	"github.com/alaaeid/catalog-service/catalog/internal/server"
	"github.com/alaaeid/catalog-service/catalog/internal/service"
	"github.com/alaaeid/catalog-service/pkg/auth"
	"github.com/alaaeid/catalog-service/pkg/logger"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "catalog")
	repo, err := repository.NewRepository(cfg.Store.BooksFile, cfg.Store.ReviewsFile, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}
	svc := service.NewService(repo, log)

	h := handler.New(svc, auth.StaticKey(cfg.Auth.APISecret), log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
