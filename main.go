package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jarodbruce/inputrelay/input"
	"github.com/jarodbruce/inputrelay/input/robot"
	"github.com/jarodbruce/inputrelay/internal/clients"
	"github.com/jarodbruce/inputrelay/internal/config"
	"github.com/jarodbruce/inputrelay/internal/display"
	"github.com/jarodbruce/inputrelay/internal/keys"
	"github.com/jarodbruce/inputrelay/internal/logging"
	"github.com/jarodbruce/inputrelay/internal/peer"
	"github.com/jarodbruce/inputrelay/internal/replay"
	"github.com/jarodbruce/inputrelay/internal/server"
)

var log = logging.L("main")

var (
	version = "0.1.0"
	cfgFile string
	listen  string
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "inputrelay",
	Short: "Remote mouse and keyboard input relay",
	Long:  `inputrelay receives mouse and keyboard events over a websocket or WebRTC data channel and replays them on this host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the websocket input endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

var peerCmd = &cobra.Command{
	Use:   "peer",
	Short: "Answer a WebRTC offer on stdin and replay input from its data channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPeer(cmd)
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the supported key names",
	Run: func(cmd *cobra.Command, args []string) {
		printKeys(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("inputrelay v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is inputrelay.yaml in the config dir or working dir)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log events without injecting them")
	rootCmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides listen_addr")
	serveCmd.Flags().StringVar(&listen, "listen", "", "listen address, overrides listen_addr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(peerCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and initializes logging.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listen
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun = dryRun
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	for _, err := range cfg.Validate() {
		if errors.Is(err, config.ErrInvalidListenAddr) {
			return nil, err
		}
	}

	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	} else if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" {
		os.Setenv("DISPLAY", ":0")
	}
	return cfg, nil
}

// replayOptions builds the shared injector and replay settings.
func replayOptions(cfg *config.Config) (input.Injector, replay.Options) {
	inj := input.Serialize(robot.New(), cfg.InjectionTimeout)
	opts := replay.Options{DryRun: cfg.DryRun}

	if cfg.CheckBounds && !cfg.DryRun {
		b, err := display.Bounds(display.Default)
		if err != nil {
			log.Warn("display bounds unavailable, pointer targets unchecked", zap.Error(err))
		} else {
			opts.Bounds = b
			log.Info("pointer bounds", zap.Stringer("bounds", b))
		}
	}
	return inj, opts
}

func runServe(cmd *cobra.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	inj, opts := replayOptions(cfg)
	srv := server.New(server.Config{
		Injector:  inj,
		Manager:   clients.NewManager(),
		ReadLimit: cfg.ReadLimit,
		QueueSize: cfg.QueueSize,
		Replay:    opts,
	})
	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("input service listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("websocket", "/ws"),
			zap.String("health", "/health"),
			zap.Bool("dry_run", cfg.DryRun),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", zap.Error(err))
	}
	if err := srv.Close(shutdownCtx); err != nil {
		log.Warn("sessions did not finish", zap.Error(err))
	}
	return nil
}

func runPeer(cmd *cobra.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	inj, opts := replayOptions(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return peer.Run(ctx, peer.Config{
		ICEServers: cfg.ICEServers,
		Injector:   inj,
		Manager:    clients.NewManager(),
		QueueSize:  cfg.QueueSize,
		Replay:     opts,
		In:         os.Stdin,
		Out:        os.Stdout,
	})
}

func printKeys(cmd *cobra.Command) {
	table := keys.Aliases()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKEY")
	for _, name := range names {
		fmt.Fprintf(w, "%q\t%s\n", name, keys.Named(table[name]))
	}
	w.Flush()
}
