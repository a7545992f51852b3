package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/darkermemo/searchpipe/config"
	"github.com/darkermemo/searchpipe/ingest"
	"github.com/darkermemo/searchpipe/pkg/events"
	"github.com/darkermemo/searchpipe/pkg/spl"
	"github.com/darkermemo/searchpipe/server"
	"github.com/darkermemo/searchpipe/store"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := hclog.Default()
	if err := rootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(log hclog.Logger) *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "searchpipe",
		Short:         "Compile SPL-style search pipelines to SQL and manage the events table",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	root.AddCommand(
		transpileCmd(),
		serveCmd(log, &cfgPath),
		ingestCmd(log, &cfgPath),
	)
	return root
}

func transpileCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "transpile QUERY",
		Short: "Compile one search pipeline and print the resulting SQL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := spl.Transpile(strings.Join(args, " "))
			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), result.SQL)
				for _, d := range result.Diagnostics {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", d.Message)
				}
			}
			if !result.IsValid {
				return fmt.Errorf("query has %d problem(s)", len(result.Diagnostics))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full transpilation result as JSON")
	return cmd
}

func serveCmd(log hclog.Logger, cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transpile API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:    cfg.Listen,
				Handler: server.New(log),
			}
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.Info("API listening", "addr", cfg.Listen)
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				log.Info("Shutting down API")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}

func ingestCmd(log hclog.Logger, cfgPath *string) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Load log files into the events table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.NewStore(log, cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					log.Error("Error closing event store", "error", err)
				}
			}()

			g, ctx := errgroup.WithContext(ctx)
			for _, file := range args {
				file := file
				g.Go(func() error {
					src, err := openSource(ctx, file, follow)
					if err != nil {
						return err
					}
					log.Info("Ingesting", "file", file, "table", cfg.Table, "follow", follow)
					return st.Sink(ctx, src, cfg.Table)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&follow, "follow", false, "keep watching files for new lines")
	return cmd
}

func openSource(ctx context.Context, file string, follow bool) (events.Iterator, error) {
	if follow {
		return ingest.Follow(ctx, file)
	}
	return ingest.Source(ctx, file)
}
