// Command webhookreg registers the platform's Stripe webhook endpoint.
// It is idempotent: re-running against an already-registered URL is a no-op.
// The signing secret is printed only when the endpoint is newly created;
// Stripe never returns it again.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/everafterhq/everafter-backend/internal/config"
	"github.com/everafterhq/everafter-backend/internal/logging"
	"github.com/everafterhq/everafter-backend/internal/payments"
)

func main() {
	logging.Setup()

	var (
		url     = flag.String("url", "", "webhook endpoint URL (default: PUBLIC_BASE_URL + /api/webhooks/stripe)")
		events  = flag.String("events", "", "comma-separated event list (default: the reconciliation set)")
		connect = flag.String("connect-account", "", "register on a connected account instead of the platform")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.StripeSecretKey == "" {
		slog.Error("STRIPE_SECRET_KEY environment variable is required")
		os.Exit(1)
	}

	endpointURL := *url
	if endpointURL == "" {
		endpointURL = cfg.PublicBaseURL + "/api/webhooks/stripe"
	}

	eventList := payments.DefaultWebhookEvents
	if *events != "" {
		eventList = strings.Split(*events, ",")
		for i := range eventList {
			eventList[i] = strings.TrimSpace(eventList[i])
		}
	}

	client := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeConnectWebhookSecret)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	endpoint, created, err := payments.EnsureWebhookEndpoint(ctx, client, endpointURL, eventList, *connect)
	if err != nil {
		slog.Error("webhook registration failed", "url", endpointURL, "error", err)
		os.Exit(1)
	}

	if created {
		slog.Info("webhook endpoint created", "id", endpoint.ID, "url", endpoint.URL)
		fmt.Println("signing secret:", endpoint.Secret)
	} else {
		slog.Info("webhook endpoint already registered", "id", endpoint.ID, "url", endpoint.URL)
	}
}
