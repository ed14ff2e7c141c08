package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aiservice/poseul/internal/discovery"
	"github.com/aiservice/poseul/internal/tui"
	"github.com/aiservice/poseul/internal/ui"
)

// Discovery command flags
var (
	discoverTimeout  int
	discoverInstance string
	discoverPick     bool
	discoverSave     bool
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(useCmd)

	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Scan timeout in seconds (default from config)")
	discoverCmd.Flags().StringVar(&discoverInstance, "instance", "", "Stop as soon as this instance answers")
	discoverCmd.Flags().BoolVar(&discoverPick, "pick", false, "Choose a backend interactively and make it the default")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Remember every backend found in the config file")
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find backends on the local network",
	Long: `Browse mDNS for poseul backends (` + discovery.ServiceType + `).

With --pick an interactive list is shown and the chosen backend becomes
the default server. With --instance the scan stops as soon as that
backend answers and it becomes the default server.`,
	Example: `  # List backends
  poseul discover

  # Pick one interactively
  poseul discover --pick

  # Wait for a known instance and select it
  poseul discover --instance poseul-sim`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func newScanner() *discovery.Scanner {
	scanner := discovery.NewScanner()
	scanner.Timeout = cfg.Discovery.Timeout
	if discoverTimeout > 0 {
		scanner.Timeout = time.Duration(discoverTimeout) * time.Second
	}
	return scanner
}

func runDiscover(cmd *cobra.Command, args []string) error {
	scanner := newScanner()
	out := cmd.OutOrStdout()

	switch {
	case discoverPick:
		chosen, err := tui.RunPicker(scanner.Scan)
		if err != nil {
			return fmt.Errorf("picker failed: %w", err)
		}
		if chosen == nil {
			return nil
		}
		return selectBackend(out, chosen)

	case discoverInstance != "":
		found, err := scanner.WaitFor(context.Background(), discoverInstance)
		if err != nil {
			return err
		}
		return selectBackend(out, found)
	}

	backends, err := scanner.Scan(context.Background())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if discoverSave {
		for _, b := range backends {
			cfg.RememberBackend(b.Instance, b.BaseURL())
		}
		if len(backends) > 0 {
			if err := cfg.Save(); err != nil {
				return err
			}
		}
	}

	if outputFormat == formatJSON {
		type entry struct {
			Instance string            `json:"instance"`
			Hostname string            `json:"hostname"`
			URL      string            `json:"url"`
			Metadata map[string]string `json:"metadata,omitempty"`
		}
		entries := make([]entry, 0, len(backends))
		for _, b := range backends {
			entries = append(entries, entry{b.Instance, b.Hostname, b.BaseURL(), b.Metadata})
		}
		return printJSON(out, entries)
	}

	p := ui.NewPrinter(out)
	p.PrintHeader("Backend discovery",
		ui.Detail{Key: "Service", Value: discovery.ServiceType},
		ui.Detail{Key: "Timeout", Value: scanner.Timeout.String()},
	)

	if len(backends) == 0 {
		p.PrintWarning("No backends found",
			"Make sure the backend is running on this network and advertises "+discovery.ServiceType+". Try a longer --timeout.")
		return nil
	}

	for _, b := range backends {
		r := ui.NewSuccessResult(b.Instance)
		r.AddDetail("URL", b.BaseURL())
		r.AddDetail("Host", b.Hostname)
		if v := b.GetMetadata("version"); v != "" {
			r.AddDetail("Version", v)
		}
		p.PrintResult(r)
	}
	p.Println("Use 'poseul discover --pick' or 'poseul use <instance>' to select one")
	return nil
}

// selectBackend remembers b and makes it the default server
func selectBackend(out io.Writer, b *discovery.Backend) error {
	cfg.RememberBackend(b.Instance, b.BaseURL())
	cfg.UseBackend(b.Instance)
	if err := cfg.Save(); err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return printJSON(out, map[string]string{"instance": b.Instance, "server_url": cfg.ServerURL})
	}
	ui.NewPrinter(out).PrintSuccess("Backend selected",
		ui.Detail{Key: "Instance", Value: b.Instance},
		ui.Detail{Key: "Server", Value: cfg.ServerURL},
		ui.Detail{Key: "Config", Value: cfg.Path()},
	)
	return nil
}

var useCmd = &cobra.Command{
	Use:   "use [instance]",
	Short: "Make a remembered backend the default server",
	Long: `Make a backend remembered by 'poseul discover' the default server.

Without an argument the remembered backends are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			names := make([]string, 0, len(cfg.Backends))
			for name := range cfg.Backends {
				names = append(names, name)
			}
			sort.Strings(names)

			if outputFormat == formatJSON {
				return printJSON(out, cfg.Backends)
			}
			p := ui.NewPrinter(out)
			if len(names) == 0 {
				p.PrintWarning("No remembered backends", "Run 'poseul discover --save' first.")
				return nil
			}
			r := ui.NewSuccessResult("Remembered backends")
			for _, name := range names {
				r.AddDetail(name, cfg.Backends[name].URL)
			}
			p.PrintResult(r)
			return nil
		}

		if !cfg.UseBackend(args[0]) {
			return fmt.Errorf("unknown backend %q (run 'poseul use' to list remembered backends)", args[0])
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		if outputFormat == formatJSON {
			return printJSON(out, map[string]string{"instance": args[0], "server_url": cfg.ServerURL})
		}
		ui.NewPrinter(out).PrintSuccess("Backend selected",
			ui.Detail{Key: "Instance", Value: args[0]},
			ui.Detail{Key: "Server", Value: cfg.ServerURL},
		)
		return nil
	},
}
