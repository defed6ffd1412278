package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/config"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A risk-free crypto paper-trading simulator",
	Long: `Papertrade simulates a trading session with virtual capital.

It tracks a small set of real cryptocurrencies mirrored from a live
price feed (BTC, ETH, SOL) plus one synthetic asset with its own
procedurally generated market, and keeps full average-cost accounting
of your virtual portfolio:

  - Buy/sell with volume-weighted average cost basis
  - Realized and unrealized PnL against your starting capital
  - An append-only trade journal with SQLite/CSV archives
  - Session state persisted between runs`,
}

var (
	cfgFile string
	cfg     *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
}

func initConfig() {
	config.LoadDotenv()

	if cfgFile == "" {
		cfg = config.Default()
		return
	}

	loaded, err := config.LoadFromFile(cfgFile)
	if err != nil {
		cobra.CheckErr(err)
	}
	cfg = loaded
}
