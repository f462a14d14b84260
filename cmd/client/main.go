// Command client is the terminal registration desk.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pdao-registration/internal/client"
	"pdao-registration/internal/tui"
	"pdao-registration/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadClientConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// the screen belongs to the UI, so logs only go to file
	logger, err := utils.InitFileLogger(config.LogPath, "client", false)
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*config, logger)
	session, err := tui.New(api, api, logger).Run(ctx)
	switch {
	case errors.Is(err, tui.ErrUserQuit):
		return
	case err != nil:
		logger.Error("client stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if session == nil {
		return
	}

	profile, err := api.Profile(ctx)
	if err != nil {
		logger.Warn("profile fetch failed", zap.Error(err))
		fmt.Printf("Signed in as %s (%s)\n", session.User.Email, session.User.UserID)
		return
	}
	fmt.Printf("Signed in as %s %s, PDAO ID %s, status %s\n", profile.FirstName, profile.LastName, profile.UserID, profile.Status)
}
