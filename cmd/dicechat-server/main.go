package main

import (
	"github.com/tavernchat/dicechat/internal/devserver"
	"github.com/tavernchat/dicechat/internal/pkg/config"
	"github.com/tavernchat/dicechat/pkg/logger"
)

func main() {
	cfg := config.LoadServer()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	storage, err := devserver.OpenStorage(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open storage")
	}
	defer storage.Close()

	e := devserver.New(cfg, storage, log)

	log.Info().Str("port", cfg.Port).Msg("dicechat dev server listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
