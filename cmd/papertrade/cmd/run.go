package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/feed"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/logger"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/store"
	"github.com/rustyeddy/papertrade/stream"
	"github.com/rustyeddy/papertrade/synth"
	"github.com/rustyeddy/papertrade/trading"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive paper-trading session",
	Long: `Run an interactive session. Prices tick in the background at the
configured speed; commands are read from stdin:

  buy <qty>        buy at the current price of the selected asset
  sell <qty>       sell at the current price
  asset <SYM>      switch asset (BTC, ETH, SOL, FAKE)
  speed <mode>     set speed mode (fast, medium, slow)
  portfolio        print the portfolio snapshot
  trades           print the trade journal
  reset            wipe the session and start over
  quit             exit`,
	RunE: runSession,
}

var listenAddr string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "serve live tick updates over websocket at this address (e.g. :8080)")
}

func runSession(cmd *cobra.Command, args []string) error {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}

	kv, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var hub *stream.Hub
	if listenAddr != "" {
		hub = stream.NewHub(log)
		go hub.Run(ctx)

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		go func() {
			if err := http.ListenAndServe(listenAddr, mux); err != nil {
				log.WithError(err).Error("websocket server stopped")
			}
		}()
		log.WithField("addr", listenAddr).Info("serving tick stream on /ws")
	}

	deps := trading.Deps{
		Prices: feed.NewClient(
			feedOptions()...,
		),
		Store:  kv,
		Logger: log,
	}
	if hub != nil {
		deps.Broadcaster = hub
	}

	session := trading.NewSession(deps)
	session.Restore()

	archive, err := openArchive()
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}

	in := bufio.NewScanner(os.Stdin)

	if !session.Initialized() {
		capital, err := promptCapital(in)
		if err != nil {
			return err
		}
		if err := session.Initialize(capital); err != nil {
			return err
		}
	}
	fmt.Printf("session ready: %s cash, asset %s, speed %s\n",
		feed.FormatLargeNumber(session.Snapshot().Cash),
		session.SelectedAsset(), session.SpeedMode())

	lines := make(chan string)
	go func() {
		defer close(lines)
		for in.Scan() {
			lines <- in.Text()
		}
	}()

	ticker := time.NewTicker(trading.Interval(session.SpeedMode()))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			session.Tick(ctx)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := dispatch(session, archive, line)
			if err != nil {
				fmt.Println("error:", err)
			}
			if quit {
				return nil
			}
			ticker.Reset(trading.Interval(session.SpeedMode()))
		}
	}
}

func feedOptions() []feed.Option {
	var opts []feed.Option
	if cfg.Feed.BaseURL != "" {
		opts = append(opts, feed.WithBaseURL(cfg.Feed.BaseURL))
	}
	if cfg.Feed.RequestsPerMinute > 0 {
		opts = append(opts, feed.WithRateLimit(cfg.Feed.RequestsPerMinute))
	}
	return opts
}

func openArchive() (journal.Archive, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.Path)
	case "csv":
		return journal.NewCSV(cfg.Journal.Path)
	default:
		return nil, nil
	}
}

func promptCapital(in *bufio.Scanner) (float64, error) {
	for {
		fmt.Print("starting capital: ")
		if !in.Scan() {
			return 0, fmt.Errorf("no input")
		}
		capital, err := strconv.ParseFloat(strings.TrimSpace(in.Text()), 64)
		if err != nil || capital <= 0 {
			fmt.Println("enter a positive number")
			continue
		}
		return capital, nil
	}
}

func dispatch(session *trading.Session, archive journal.Archive, line string) (quit bool, err error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "quit", "exit":
		return true, nil

	case "buy", "sell":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: %s <qty>", fields[0])
		}
		qty, perr := strconv.ParseFloat(fields[1], 64)
		if perr != nil {
			return false, fmt.Errorf("bad quantity %q", fields[1])
		}
		asset := session.SelectedAsset()
		price := session.CurrentPrice(asset)
		if price <= 0 {
			return false, fmt.Errorf("no price for %s yet, wait for a tick", asset)
		}

		var trade ledger.Trade
		if fields[0] == "buy" {
			trade, err = session.Buy(asset, qty, price)
		} else {
			trade, err = session.Sell(asset, qty, price)
		}
		if err != nil {
			return false, err
		}
		if archive != nil {
			if aerr := archive.Record(trade); aerr != nil {
				fmt.Println("warning: archive write failed:", aerr)
			}
		}
		printTrade(trade)
		return false, nil

	case "asset":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: asset <SYM>")
		}
		return false, session.SelectAsset(market.Symbol(strings.ToUpper(fields[1])))

	case "speed":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: speed <fast|medium|slow>")
		}
		mode, perr := synth.ParseMode(strings.ToLower(fields[1]))
		if perr != nil {
			return false, perr
		}
		return false, session.SetSpeedMode(mode)

	case "portfolio":
		printSnapshot(session.Snapshot())
		return false, nil

	case "trades":
		for _, t := range session.Trades() {
			printTrade(t)
		}
		return false, nil

	case "reset":
		session.Reset()
		fmt.Println("session cleared; restart to begin a new one")
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func printTrade(t ledger.Trade) {
	line := fmt.Sprintf("%s  %-4s %-4s qty %.6f @ %s = %s",
		t.Time.Format("15:04:05"), t.Side, t.Symbol,
		t.Quantity, feed.FormatPrice(t.Price), feed.FormatLargeNumber(t.Total))
	if t.RealizedPnL != nil {
		line += fmt.Sprintf("  pnl %s", feed.FormatLargeNumber(*t.RealizedPnL))
	}
	fmt.Println(line)
}

func printSnapshot(snap ledger.Snapshot) {
	fmt.Printf("cash %s  value %s  pnl %s (%s)\n",
		feed.FormatLargeNumber(snap.Cash),
		feed.FormatLargeNumber(snap.TotalValue),
		feed.FormatLargeNumber(snap.TotalPnL),
		feed.FormatPercent(snap.TotalPnLPercent))
	for _, pos := range snap.Positions {
		fmt.Printf("  %-4s qty %.6f avg %s now %s  unrealized %s\n",
			pos.Symbol, pos.Quantity,
			feed.FormatPrice(pos.AvgBuyPrice),
			feed.FormatPrice(pos.CurrentPrice),
			feed.FormatLargeNumber(pos.UnrealizedPnL()))
	}
}
