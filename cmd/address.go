package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/db"
	"github.com/tranvictor/uns/ui"
)

// addressBookFile is the book the custom resolver reads.
func addressBookFile(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Resolvers.Custom.File != "" {
		return cfg.Resolvers.Custom.File, nil
	}
	return db.DefaultAddressBookFile(), nil
}

func showEntries(u ui.UI, entries []db.AddressDesc) error {
	if config.JSONOutput {
		return u.JSON(entries)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Desc, e.Address})
	}
	u.Table([]string{"Name", "Address"}, rows)
	return nil
}

var addressCmd = &cobra.Command{
	Use:   "addr [query]",
	Short: "Find at most 10 matching names in the local address book",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := addressBookFile(cmd)
		if err != nil {
			return err
		}
		book, err := db.LoadAddressBook(file)
		if err != nil {
			return err
		}
		matches := book.Search(strings.Join(args, " "), 10)
		if len(matches) == 0 {
			newUI().Error("Nothing in %s matches", file)
			return errNotFound
		}
		return showEntries(newUI(), matches)
	},
}

var listAddressCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the whole address book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := addressBookFile(cmd)
		if err != nil {
			return err
		}
		book, err := db.LoadAddressBook(file)
		if err != nil {
			return err
		}
		return showEntries(newUI(), book.Entries())
	},
}

var addAddressCmd = &cobra.Command{
	Use:     "add [name] [address]",
	Short:   "Register a name in the address book",
	Example: "  uns addr add treasury.local 0x1111111111111111111111111111111111111111",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := addressBookFile(cmd)
		if err != nil {
			return err
		}
		book, err := db.LoadAddressBook(file)
		if err != nil {
			return err
		}
		if err := book.Register(args[0], args[1]); err != nil {
			return err
		}
		if err := book.Save(file); err != nil {
			return fmt.Errorf("saving %s: %w", file, err)
		}
		newUI().Success("%s -> %s saved to %s", args[0], args[1], file)
		return nil
	},
}

func init() {
	addressCmd.PersistentFlags().BoolVarP(&config.JSONOutput, "json", "j", false, "Print entries as JSON.")
	addressCmd.AddCommand(listAddressCmd)
	addressCmd.AddCommand(addAddressCmd)
	rootCmd.AddCommand(addressCmd)
}
