package cmd

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/tagfolder/internal/render"
	"github.com/mattsolo1/tagfolder/pkg/orchestrator"
)

func NewTreeCmd() *cobra.Command {
	var (
		search    string
		expand    []string
		showPaths bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "tree [search]",
		Short: "Print the tag tree of the notes directory",
		Long: `Build the tag tree once and print it.

Examples:
  tagfolder tree                        # All tags
  tagfolder tree "proj -archive"        # Documents tagged proj*, without archive*
  tagfolder tree -e root/proj           # Also list the other tags under proj`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			if len(args) == 1 {
				search = args[0]
			}
			if cmd.Flags().Changed("limit") {
				e.cfg.Settings.ExpandLimit = limit
			}

			pub := render.NewText(cmd.OutOrStdout(), render.Options{
				ExpandLimit: e.cfg.Settings.ExpandLimit,
				ShowPaths:   showPaths,
			})
			o := orchestrator.New(e.src, pub, e.cfg.Settings,
				orchestrator.WithLogger(logrus.NewEntry(e.logger)),
				orchestrator.WithSearch(search),
				orchestrator.WithExpanded(expandKeys(expand)...),
			)
			return o.Refresh(context.Background())
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter documents by tag (terms AND'd, | for OR, -term to exclude)")
	cmd.Flags().StringSliceVarP(&expand, "expand", "e", nil, "Tag paths to expand, e.g. root/proj")
	cmd.Flags().BoolVar(&showPaths, "paths", false, "Show document paths")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Deepest tag level to list (0 = no limit)")

	return cmd
}

// expandKeys accepts keys with or without the leading "root/".
func expandKeys(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.Trim(k, "/")
		if k == "" {
			continue
		}
		if k != "root" && !strings.HasPrefix(k, "root/") {
			k = "root/" + k
		}
		out = append(out, k)
	}
	return out
}
