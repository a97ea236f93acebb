// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/networks"
)

var rootCmd = &cobra.Command{
	Use:   "uns",
	Short: "Resolve blockchain names across ENS, SPACE ID, Unstoppable, SNS, SuiNS and more",
	Long: fmt.Sprintf(`uns turns human readable names into addresses and back, asking each
naming protocol in turn until one of them knows the name.

Names are routed by their TLD: .eth goes to ENS, .bnb and .arb to SPACE ID,
.crypto, .nft, .x and friends to Unstoppable Domains, .sol to SNS and .sui to
SuiNS. Names starting with @ or ending in .cifi are identity usernames. Names
nobody claims are tried against every resolver in priority order, ending with
your local address book (~/.uns/addresses.json).

Settings live in %s. Chain nodes can be overridden per network with env
vars, for example %s for Ethereum mainnet.`,
		config.DefaultFile(),
		networks.EthereumMainnet.GetNodeVariableName(),
	),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func setupLogging() {
	level := slog.LevelWarn
	if config.Verbose {
		level = log.LevelDebug
	}
	useColor := term.IsTerminal(int(os.Stderr.Fd()))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)))
}

func exitCode(err error) int {
	if errors.Is(err, errNotFound) {
		return 2
	}
	return 1
}

// Execute runs the command line and exits with 1 on errors and 2 when a
// lookup found nothing.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", "mainnet", "network of the ENS registry to read")
	rootCmd.PersistentFlags().StringVarP(&config.ConfigFile, "config", "c", "", "config file, default "+config.DefaultFile())
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.RegisterFlagCompletionFunc("network", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return networks.GetSupportedNetworkNames(), cobra.ShellCompDirectiveNoFileComp
	})
}
