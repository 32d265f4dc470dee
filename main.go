package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/upsbridge/internal/server"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "upsbridge",
	Short:   "UPS shipping bridge - rating, labels, returns, tracking and transit times",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP bridge",
	RunE:  runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Authenticate with UPS and print the token type and expiry",
	RunE:  runToken,
}

var trackCmd = &cobra.Command{
	Use:   "track <tracking-number>",
	Short: "Print UPS tracking details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an address with UPS",
	RunE:  runValidate,
}

var transitCmd = &cobra.Command{
	Use:   "transit",
	Short: "List UPS service levels and delivery dates to a destination",
	RunE:  runTransit,
}

var (
	trackTransactionID string

	validateLines   []string
	validateCity    string
	validateState   string
	validateZip     string
	validateZipExt  string
	validateCountry string

	transitCity    string
	transitState   string
	transitZip     string
	transitCountry string
	transitWeight  float64
	transitCartID  string
)

func init() {
	trackCmd.Flags().StringVar(&trackTransactionID, "transaction-id", "", "transaction id sent to UPS (generated when empty)")

	validateCmd.Flags().StringArrayVar(&validateLines, "line", nil, "address line (repeatable)")
	validateCmd.Flags().StringVar(&validateCity, "city", "", "city")
	validateCmd.Flags().StringVar(&validateState, "state", "", "state or province code")
	validateCmd.Flags().StringVar(&validateZip, "zip", "", "postal code")
	validateCmd.Flags().StringVar(&validateZipExt, "zip-ext", "", "extended postal code")
	validateCmd.Flags().StringVar(&validateCountry, "country", "US", "country code")

	transitCmd.Flags().StringVar(&transitCity, "city", "", "destination city")
	transitCmd.Flags().StringVar(&transitState, "state", "", "destination state or province code")
	transitCmd.Flags().StringVar(&transitZip, "zip", "", "destination postal code")
	transitCmd.Flags().StringVar(&transitCountry, "country", "US", "destination country code")
	transitCmd.Flags().Float64Var(&transitWeight, "weight", 0, "shipment weight in grams")
	transitCmd.Flags().StringVar(&transitCartID, "cart-id", "", "cart id used as the UPS transaction id")

	rootCmd.AddCommand(serveCmd, tokenCmd, trackCmd, validateCmd, transitCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	// Initialize shipper registry with all carriers
	registry := initShipperRegistry(cfg, logger, tracer)

	logger.Info("Starting UPS bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: cfg.Port}, registry, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// withClient builds a UPS client from the environment for one-shot commands.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *ups.Client) (any, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	result, err := fn(cmd.Context(), newUPSClient(cfg, logger, nil))
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runToken(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *ups.Client) (any, error) {
		return client.Authenticate(ctx)
	})
}

func runTrack(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *ups.Client) (any, error) {
		return client.TrackPackage(ctx, args[0], trackTransactionID)
	})
}

func runValidate(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *ups.Client) (any, error) {
		return client.ValidateAddress(ctx, &shipper.AddressValidationRequest{
			AddressLines: validateLines,
			City:         validateCity,
			Province:     validateState,
			Zip:          shipper.FlexString(validateZip),
			ZipExtended:  shipper.FlexString(validateZipExt),
			CountryCode:  validateCountry,
		})
	})
}

func runTransit(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *ups.Client) (any, error) {
		req := &shipper.DeliveryEstimateRequest{
			Destination: shipper.Address{
				City:        transitCity,
				Province:    transitState,
				PostalCode:  transitZip,
				CountryCode: transitCountry,
			},
			CartID: transitCartID,
		}
		if cmd.Flags().Changed("weight") {
			req.Weight = &transitWeight
		}
		return client.EstimateDeliveryDate(ctx, req)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
