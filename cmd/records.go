package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/ui"
)

var recordsCmd = &cobra.Command{
	Use:   "records [name]",
	Short: "Show every record a name carries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			stop := u.Spinner("Reading records of " + args[0])
			records, err := svc.GetRecords(ctx, args[0], lookupOptions())
			stop()
			if err != nil {
				return err
			}
			if config.JSONOutput {
				if err := u.JSON(records); err != nil {
					return err
				}
			} else {
				ui.ShowRecords(u, args[0], records)
			}
			if records == nil {
				return errNotFound
			}
			return nil
		})
	},
}

var textCmd = &cobra.Command{
	Use:     "text [name] [key]",
	Short:   "Show one text record of a name",
	Example: "  uns text vitalik.eth com.twitter",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			value, err := svc.GetText(ctx, args[0], args[1], lookupOptions())
			if err != nil {
				return err
			}
			return showValue(u, args[1], value)
		})
	},
}

var avatarCmd = &cobra.Command{
	Use:   "avatar [name]",
	Short: "Show the avatar URL of a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			value, err := svc.GetAvatar(ctx, args[0], lookupOptions())
			if err != nil {
				return err
			}
			return showValue(u, "avatar", value)
		})
	},
}

func showValue(u ui.UI, key, value string) error {
	if config.JSONOutput {
		if err := u.JSON(map[string]string{key: value}); err != nil {
			return err
		}
	} else if value != "" {
		u.Emphasis("%s", value)
	} else {
		u.Error("%s: not set", key)
	}
	if value == "" {
		return errNotFound
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{recordsCmd, textCmd, avatarCmd} {
		AddLookupFlags(c)
		rootCmd.AddCommand(c)
	}
}
