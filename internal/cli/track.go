package cli

import (
	"errors"
	"fmt"
	"time"

	"microshop/internal/client"
	"microshop/internal/core/apperr"
	"microshop/internal/core/httpclient"

	"github.com/spf13/cobra"
)

// TrackOptions holds flags for the track command.
type TrackOptions struct {
	*RootOptions
	URL     string
	Timeout time.Duration
}

// NewTrackCommand creates the track command.
func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "track <tracking-number>",
		Short: "Show the public tracking view of a shipment",
		Long: `Query a running shipping service for a tracking number.

--url is the base URL of the shipping service. When every service runs in
one process, include the /shipping prefix.

Examples:
  microshop track SHIP1700000000000A1B2
  microshop track SHIP1700000000000A1B2 --url http://localhost:8080/shipping --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:8080/shipping", "shipping service base URL")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	return cmd
}

func runTrack(opts *TrackOptions, cmd *cobra.Command, trackingNumber string) error {
	c := client.New(client.Endpoints{Shipping: opts.URL}, httpclient.NewClient(opts.Timeout))

	view, err := c.Track(cmd.Context(), trackingNumber)
	var apiErr *client.APIError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return NewExitError(ExitFailure, fmt.Sprintf("tracking number %s not found", trackingNumber))
	case errors.As(err, &apiErr):
		return WrapExitError(ExitFailure, "shipping service returned an error", err)
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to reach shipping service", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, view)
	}

	fmt.Fprintf(out, "Tracking number: %s\n", view.TrackingNumber)
	fmt.Fprintf(out, "Status:          %s\n", view.Status)
	fmt.Fprintf(out, "Destination:     %s\n", view.Destination)
	fmt.Fprintf(out, "Shipping type:   %s\n", view.ShippingType)
	if view.DeliveredAt != nil {
		fmt.Fprintf(out, "Delivered at:    %s\n", view.DeliveredAt.Format(time.RFC3339))
	}
	fmt.Fprintln(out, "History:")
	for _, e := range view.StatusHistory {
		fmt.Fprintf(out, "  %s  %-10s  %s (%s)\n", e.Timestamp.Format("2006-01-02 15:04"), e.Status, e.Notes, e.UpdatedBy)
	}
	return nil
}
