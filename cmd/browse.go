package cmd

import (
	"context"
	"errors"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/tagfolder/internal/render"
	"github.com/mattsolo1/tagfolder/internal/tui/browser"
	"github.com/mattsolo1/tagfolder/pkg/orchestrator"
	"github.com/mattsolo1/tagfolder/pkg/scheduler"
	"github.com/mattsolo1/tagfolder/pkg/tree"
)

func NewBrowseCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"tui"},
		Short:   "Browse the tag tree interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var program atomic.Pointer[tea.Program]
			pub := render.Func(func(root *tree.Node) {
				if p := program.Load(); p != nil {
					p.Send(browser.RootMsg{Root: root})
				}
			})

			o := orchestrator.New(e.src, pub, e.cfg.Settings,
				orchestrator.WithLogger(logrus.NewEntry(e.logger)),
				orchestrator.WithYielder(scheduler.NewTimeBoxed(scheduler.DefaultInterval)),
				orchestrator.WithSearch(search),
			)
			if err := o.Refresh(ctx); err != nil {
				return err
			}

			changes, err := e.src.Watch(ctx, 0)
			if err != nil {
				return err
			}

			p := tea.NewProgram(browser.New(ctx, o), tea.WithAltScreen(), tea.WithContext(ctx))
			program.Store(p)

			go func() {
				if err := o.Run(ctx, changes); err != nil && !errors.Is(err, context.Canceled) {
					e.logger.WithError(err).Error("Watcher stopped")
				}
			}()

			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Initial tag filter")

	return cmd
}
