package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/tagfolder/internal/render"
	"github.com/mattsolo1/tagfolder/pkg/metrics"
	"github.com/mattsolo1/tagfolder/pkg/orchestrator"
	"github.com/mattsolo1/tagfolder/pkg/scheduler"
	"github.com/mattsolo1/tagfolder/pkg/tree"
)

func NewWatchCmd() *cobra.Command {
	var (
		search      string
		expand      []string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild and print the tag tree whenever notes change",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.NewMetrics()
			if metricsAddr != "" {
				srv := newMetricsServer(metricsAddr, m)
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						e.logger.WithError(err).Error("Metrics server failed")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			out := cmd.OutOrStdout()
			opts := render.Options{ExpandLimit: e.cfg.Settings.ExpandLimit}
			pub := render.Func(func(root *tree.Node) {
				writeFrame(out, render.Render(root, opts))
			})

			o := orchestrator.New(e.src, pub, e.cfg.Settings,
				orchestrator.WithLogger(logrus.NewEntry(e.logger)),
				orchestrator.WithMetrics(m),
				orchestrator.WithYielder(scheduler.NewTimeBoxed(scheduler.DefaultInterval)),
				orchestrator.WithSearch(search),
				orchestrator.WithExpanded(expandKeys(expand)...),
			)

			changes, err := e.src.Watch(ctx, 0)
			if err != nil {
				return err
			}

			err = o.Run(ctx, changes)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter documents by tag")
	cmd.Flags().StringSliceVarP(&expand, "expand", "e", nil, "Tag paths to expand, e.g. root/proj")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

func newMetricsServer(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"tagfolder"}`))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func writeFrame(w io.Writer, body string) {
	fmt.Fprintf(w, "--- %s ---\n%s", time.Now().Format("15:04:05"), body)
}
