package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"volunteerbot/internal/bot"
	"volunteerbot/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Configuration
	cfg, err := config.Load(config.DotenvPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Msg("Unknown LOG_LEVEL " + cfg.LogLevel + ", using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Info().Strs("schools", cfg.Schools).Str("role", cfg.RoleName).Str("channel", cfg.LogChannelName).Msg("Configuration loaded")

	// Create bot
	volunteerBot, err := bot.CreateBot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create discord bot")
	}

	// Run bot until there is an os interruption (ctrl + C)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := volunteerBot.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped")
	}
}
