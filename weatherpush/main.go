// Command weatherpush publishes weather data to a running face over its
// HTTP API, playing the part of the phone companion.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	Addr    string
	Timeout time.Duration
}

type setOptions struct {
	High string
	Low  string
	Icon string
}

func newRootCommand() *cobra.Command {
	ro := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "weatherpush",
		Short:         "Push weather data to a weatherface",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&ro.Addr, "addr", "http://127.0.0.1:8080",
		"Base URL of the face.")
	cmd.PersistentFlags().DurationVar(&ro.Timeout, "timeout", 10*time.Second,
		"Request timeout.")

	addSet(cmd, ro)
	addDelete(cmd, ro)
	return cmd
}

func addSet(topLevel *cobra.Command, ro *rootOptions) {
	so := &setOptions{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Publish high and low temperatures, optionally with an icon",
		Example: `
weatherpush set --high 25° --low 16°
weatherpush set --high 25° --low 16° --icon sunny.png
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if so.High == "" || so.Low == "" {
				return errors.New("both --high and --low are required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()
			c := newClient(ro.Addr, nil)

			if so.Icon == "" {
				return c.putWeather(ctx, so.High, so.Low, nil)
			}
			data, err := os.ReadFile(so.Icon)
			if err != nil {
				return err
			}
			asset, err := c.uploadAsset(ctx, data)
			if err != nil {
				return err
			}
			if err := c.putWeather(ctx, so.High, so.Low, &asset); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "icon %s\n", asset.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&so.High, "high", "", "High temperature text, e.g. 25°.")
	cmd.Flags().StringVar(&so.Low, "low", "", "Low temperature text, e.g. 16°.")
	cmd.Flags().StringVar(&so.Icon, "icon", "", "Image file to send as the weather icon.")
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the weather item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()
			return newClient(ro.Addr, nil).deleteWeather(ctx)
		},
	}
	topLevel.AddCommand(cmd)
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "weatherpush:", err)
		os.Exit(1)
	}
}
