package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/ui"
)

var NamesFile string

// readNames reads one name per line. Blank lines and lines starting with #
// are skipped.
func readNames(r io.Reader) ([]string, error) {
	names := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

func namesFromFile(file string) ([]string, error) {
	if file == "-" {
		return readNames(os.Stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readNames(f)
}

var resolveManyCmd = &cobra.Command{
	Use:   "resolve-many [names...]",
	Short: "Resolve many names at once",
	Long: `Resolve a list of names. ENS names are packed into multicall batches,
the rest are resolved concurrently. Names come from the arguments, from
--file, or from both. Use --file - to read stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := append([]string{}, args...)
		if NamesFile != "" {
			fromFile, err := namesFromFile(NamesFile)
			if err != nil {
				return fmt.Errorf("reading %s: %w", NamesFile, err)
			}
			names = append(names, fromFile...)
		}
		if len(names) == 0 {
			return fmt.Errorf("no names given")
		}
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			stop := u.Spinner(fmt.Sprintf("Resolving %d names", len(names)))
			results, err := svc.ResolveMany(ctx, names, lookupOptions())
			stop()
			if err != nil {
				return err
			}
			if config.JSONOutput {
				if err := u.JSON(results); err != nil {
					return err
				}
			} else {
				ui.ShowResolutions(u, names, results)
			}
			for _, name := range names {
				if results[name] == nil {
					return errNotFound
				}
			}
			return nil
		})
	},
}

func init() {
	AddLookupFlags(resolveManyCmd)
	resolveManyCmd.Flags().StringVarP(&NamesFile, "file", "f", "", "File with one name per line, - for stdin.")
	rootCmd.AddCommand(resolveManyCmd)
}
