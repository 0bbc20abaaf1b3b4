package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/config"
)

// A walk through the library: describe a product, log a purchase against it
// and generate a share link. Point NATIVE_URL at cmd/native-server
// (http://localhost:8090/v1) to run it against a remote boundary.
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg, err := config.Load(config.WithEnv(""), config.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := cfg.BuildService(ctx)
	if err != nil {
		logger.Error("Failed to build service", "error", err)
		os.Exit(1)
	}
	logger.Info("Service ready", "native", cfg.NativeType, "available", svc.Available())

	expires := time.Now().Add(30 * 24 * time.Hour)
	ref, err := svc.CreateReference(ctx, "products/sneaker-42", simpleshare.ContentMetadata{
		CanonicalURL:       "https://shop.example.com/products/sneaker-42",
		Title:              "Sneaker 42",
		ContentDescription: "Lightweight running shoe",
		Keywords:           []string{"shoes", "running"},
		PubliclyIndex:      simpleshare.Bool(true),
		ExpirationDate:     &expires,
		ContentMetadata: &simpleshare.ProductMetadata{
			ContentSchema: "COMMERCE_PRODUCT",
			Price:         simpleshare.Float(89.9),
			Currency:      "USD",
			SKU:           "SNK-42",
			CustomMetadata: map[string]interface{}{
				"color": "blue",
			},
		},
	})
	if err != nil {
		logger.Error("Failed to create content reference", "error", err)
		os.Exit(1)
	}
	defer svc.ReleaseReference(context.Background(), ref)
	logger.Info("Content reference created", "handle", ref.Handle())

	if err := svc.RegisterView(ctx, ref); err != nil {
		logger.Warn("Failed to register view", "error", err)
	}

	purchase := svc.NewEvent(string(simpleshare.EventPurchase), simpleshare.EventFields{
		TransactionID: "tx-1001",
		Currency:      "USD",
		Revenue:       simpleshare.Float(89.9),
		Tax:           simpleshare.Float(7.2),
		CustomData:    map[string]interface{}{"store": "web"},
	}, ref)
	if err := purchase.Log(ctx); err != nil {
		logger.Warn("Failed to log purchase", "error", err)
	}

	link, err := svc.GenerateShortURL(ctx, ref,
		simpleshare.LinkProperties{Channel: "email", Campaign: "spring"},
		simpleshare.ControlParams{"$fallback_url": "https://shop.example.com"})
	if err != nil {
		logger.Warn("Failed to generate link", "error", err)
	} else if link != nil {
		logger.Info("Share link generated", "url", link.URL)
	}
}
