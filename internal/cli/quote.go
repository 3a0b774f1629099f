package cli

import (
	"fmt"

	"microshop/internal/features/shipping/domain"

	"github.com/spf13/cobra"
)

// QuoteOptions holds flags for the quote command.
type QuoteOptions struct {
	*RootOptions
	Destination  string
	Weight       float64
	ShippingType string
}

// NewQuoteCommand creates the quote command. The cost is computed locally.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Estimate a shipping cost",
		Long: `Estimate the cost of shipping a parcel.

Examples:
  microshop quote --destination Jakarta --weight 1500 --type express
  microshop quote --destination Surabaya --weight 1200 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Destination, "destination", "", "destination city (required)")
	_ = cmd.MarkFlagRequired("destination")
	cmd.Flags().Float64Var(&opts.Weight, "weight", 0, "parcel weight in grams (required)")
	_ = cmd.MarkFlagRequired("weight")
	cmd.Flags().StringVar(&opts.ShippingType, "type", "standard", "standard, express or overnight")

	return cmd
}

func runQuote(opts *QuoteOptions, cmd *cobra.Command) error {
	quote, err := domain.QuoteCost(opts.Destination, opts.Weight, opts.ShippingType)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid quote request", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(out, quote)
	}

	fmt.Fprintf(out, "Destination:    %s\n", quote.Destination)
	fmt.Fprintf(out, "Weight:         %s\n", quote.Weight)
	fmt.Fprintf(out, "Shipping type:  %s\n", quote.ShippingType)
	fmt.Fprintf(out, "Estimated cost: %s %s\n", quote.Currency, quote.EstimatedCost.String())
	fmt.Fprintf(out, "Estimated days: %d\n", quote.EstimatedDays)
	return nil
}
