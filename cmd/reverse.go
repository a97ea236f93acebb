package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/ui"
)

type reverseResult struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

var reverseCmd = &cobra.Command{
	Use:   "reverse [addresses...]",
	Short: "Find the primary name of addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			opts := lookupOptions()
			missing := false
			results := make([]reverseResult, 0, len(args))
			for _, addr := range args {
				stop := u.Spinner("Looking up " + addr)
				name, err := svc.ReverseResolve(ctx, addr, opts)
				stop()
				if err != nil {
					return err
				}
				if name == "" {
					missing = true
				}
				results = append(results, reverseResult{Address: addr, Name: name})
			}
			if config.JSONOutput {
				if err := u.JSON(results); err != nil {
					return err
				}
			} else {
				rows := make([][2]string, 0, len(results))
				for _, r := range results {
					name := u.Style(ui.Found(r.Name))
					if r.Name == "" {
						name = u.Style(ui.Missing("no primary name"))
					}
					rows = append(rows, [2]string{r.Address, name})
				}
				u.KeyValue(rows)
			}
			if missing {
				return errNotFound
			}
			return nil
		})
	},
}

func init() {
	AddLookupFlags(reverseCmd)
	rootCmd.AddCommand(reverseCmd)
}
