// Command gatewayctl sends one request through the gateway client and prints
// the validated response. Connection settings come from GATEWAY_* variables
// unless overridden by flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/pkg/logger"
	"github.com/fxhedge/hedgegate/internal/schema"
	"github.com/fxhedge/hedgegate/internal/telemetry"
)

var Version = "dev"

var (
	baseURL  string
	retries  int
	timeout  time.Duration
	payload  string
	logLevel string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "gatewayctl",
		Short:        "Talk to the pricing/risk gateway from the command line",
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "gateway base URL (default from GATEWAY_BASE_URL)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "attempts per call including the first (default from GATEWAY_RETRY_LIMIT)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the call")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for attempt telemetry")

	rootCmd.AddCommand(
		callCmd("quote", "Request a binding quote", func(ctx context.Context, c *gateway.Client, input any) (any, error) {
			return c.RequestBindingQuote(ctx, input)
		}),
		callCmd("plan", "Fetch a risk plan", func(ctx context.Context, c *gateway.Client, input any) (any, error) {
			return c.FetchRiskPlan(ctx, input)
		}),
		callCmd("execute", "Submit an execution order", func(ctx context.Context, c *gateway.Client, input any) (any, error) {
			return c.SubmitExecutionOrder(ctx, input)
		}),
		configCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type callFunc func(ctx context.Context, c *gateway.Client, input any) (any, error)

func callCmd(use, short string, call callFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readPayload(cmd.InOrStdin(), payload)
			if err != nil {
				return err
			}
			client, err := newClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			resp, err := call(ctx, client, input)
			if err != nil {
				var verr *schema.Error
				if errors.As(err, &verr) {
					_ = printJSON(cmd.ErrOrStderr(), verr)
				}
				return fmt.Errorf("%s failed: %w", use, err)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&payload, "file", "f", "-", "JSON payload file, - for stdin")
	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the gateway settings resolved from the environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), config.ReadGatewayConfig(config.EnvMap(os.Environ())))
		},
	}
}

func newClient(logOut io.Writer) (*gateway.Client, error) {
	log := logger.NewJSON(logOut, logLevel)
	sink := telemetry.LogSink{Logger: log}
	return gateway.New(gateway.Config{
		BaseURL:       baseURL,
		RetryLimit:    retries,
		EmitTelemetry: sink.Emit,
		Logger:        log,
	})
}

func readPayload(stdin io.Reader, path string) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	input, err := schema.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return input, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
