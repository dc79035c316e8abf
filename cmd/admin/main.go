// cmd/admin/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"adminsync/internal/admin"
	"adminsync/internal/clients"
	"adminsync/internal/config"
	"adminsync/internal/entity"
	"adminsync/internal/faults"
	"adminsync/internal/listsync"
	"adminsync/internal/notify"
	"adminsync/internal/prefs"
	"adminsync/internal/telemetry"
	"adminsync/internal/theme"
	"adminsync/internal/tui"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: admin [flags] [command]

Commands:
  tui                 interactive page (default)
  list                print the collection
  delete <id>         delete a record after confirmation
  toggle-theme        switch between the dark and light theme

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	entityName := flag.String("entity", "", "page to open: news, tools, brands, cars, books")
	apiURL := flag.String("api", "", "API base URL")
	format := flag.String("format", "text", "list output format: text or html")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *entityName != "" {
		cfg.Entity = *entityName
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}

	command := "tui"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	logger, closeLog, err := newLogger(cfg.Log, command == "tui")
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    true,
	})
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	store, closeStore, err := prefs.Open(ctx, cfg.Prefs.Driver, cfg.Prefs.DSN)
	if err != nil {
		log.Fatalf("Failed to open preferences: %v", err)
	}
	defer closeStore()

	if command == "toggle-theme" {
		if err := toggleTheme(ctx, store, os.Stdout); err != nil {
			log.Fatalf("Failed to toggle theme: %v", err)
		}
		return
	}

	notes := notify.NewCenter(cfg.NotifyTTL, notify.WithLogger(logger))
	page, err := admin.NewPage(cfg.Entity, admin.Deps{
		BaseURL:       cfg.APIURL,
		Notes:         notes,
		ClientOptions: clientOptions(cfg),
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("Failed to build page: %v", err)
	}

	switch command {
	case "tui":
		current, err := theme.Load(ctx, store)
		if err != nil {
			logger.Warn("theme not loaded", "error", err)
		}
		if err := tui.Run(ctx, page, notes, store, current); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}
	case "list":
		if err := page.Load(ctx); err != nil {
			log.Fatalf("Failed to list %s: %v", page.Meta().Name, err)
		}
		if err := writeTable(os.Stdout, page, *format); err != nil {
			log.Fatalf("Failed to write table: %v", err)
		}
	case "delete":
		if flag.NArg() < 2 {
			usage()
			os.Exit(2)
		}
		err := remove(ctx, page, entity.ID(flag.Arg(1)), os.Stdin, os.Stdout)
		if errors.Is(err, listsync.ErrDeclined) {
			fmt.Println("Cancelled.")
			return
		}
		printBanners(os.Stdout, notes)
		if err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func clientOptions(cfg *config.Config) []clients.Option {
	opts := []clients.Option{
		clients.WithTimeout(cfg.RequestTimeout),
		clients.WithRateLimit(cfg.RateLimit),
	}
	if cfg.Faults.Enabled() {
		rules := faults.Rules(cfg.Faults.FailureRate, cfg.Faults.Latency, cfg.Faults.Status)
		opts = append(opts, clients.WithTransport(faults.NewTransport(nil, rules)))
	}
	return opts
}

// newLogger writes JSON logs to the configured file. The TUI owns the
// terminal, so without a file its logs are discarded.
func newLogger(cfg config.LogConfig, interactive bool) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	switch {
	case cfg.File != "":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out, closeFn = f, f.Close
	case interactive:
		out = io.Discard
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func toggleTheme(ctx context.Context, store prefs.Store, out io.Writer) error {
	current, err := theme.Load(ctx, store)
	if err != nil {
		return err
	}
	next, err := theme.Toggle(ctx, store, current)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Theme: %s\n", next)
	return nil
}

func remove(ctx context.Context, page listsync.Page, id entity.ID, in io.Reader, out io.Writer) error {
	if err := page.Load(ctx); err != nil {
		return err
	}
	reader := bufio.NewReader(in)
	confirm := listsync.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
	return page.Remove(ctx, id, confirm)
}

// writeTable prints the rendered rows. The html format uses the escaped
// cells; text uses the control-stripped ones.
func writeTable(out io.Writer, page listsync.Page, format string) error {
	table := page.Table()
	switch format {
	case "html":
		fmt.Fprintf(out, "<table class=\"%s\">\n  <tr>", page.Meta().Name)
		for _, c := range table.Columns {
			fmt.Fprintf(out, "<th>%s</th>", listsync.EscapeHTML(c.Label()))
		}
		fmt.Fprintln(out, "</tr>")
		for _, row := range table.Rows {
			if row.Class != "" {
				fmt.Fprintf(out, "  <tr class=\"%s\" data-id=\"%s\">", row.Class, listsync.EscapeHTML(row.ID.String()))
			} else {
				fmt.Fprintf(out, "  <tr data-id=\"%s\">", listsync.EscapeHTML(row.ID.String()))
			}
			for _, cell := range row.Cells {
				fmt.Fprintf(out, "<td>%s</td>", cell)
			}
			fmt.Fprintln(out, "</tr>")
		}
		fmt.Fprintln(out, "</table>")
	case "text":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		labels := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			labels[i] = c.Label()
		}
		fmt.Fprintln(w, strings.Join(labels, "\t"))
		for _, row := range table.Rows {
			fmt.Fprintln(w, strings.Join(row.Text, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	fmt.Fprintln(out, page.Summary())
	return nil
}

func printBanners(out io.Writer, notes *notify.Center) {
	for _, n := range notes.Active() {
		fmt.Fprintf(out, "[%s] %s\n", n.Level, listsync.StripControl(n.Text))
	}
}
