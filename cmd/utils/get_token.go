package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"dispatch-console/internal/infrastructure/config"
	"dispatch-console/internal/infrastructure/oauth"
	"dispatch-console/pkg/logger"

	"github.com/google/uuid"
)

// Prints the GMAIL_REFRESH_TOKEN for the bookings inbox
func main() {
	log := logger.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
	}

	auth := oauth.NewMailboxOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "",
		"http://localhost:8090/oauth2callback", log)
	state := uuid.NewString()

	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := auth.Exchange(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nGMAIL_REFRESH_TOKEN=%s\n\n", token.RefreshToken)
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", auth.AuthURL(state))
	if err := http.ListenAndServe(":8090", nil); err != nil {
		log.Fatal("Callback server error", "error", err)
	}
}
