package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/TwigBush/roleguard/internal/config"
	"github.com/TwigBush/roleguard/internal/policy"
)

type opRow struct {
	ID    string   `json:"id"    yaml:"id"`
	Match string   `json:"match" yaml:"match"`
	Roles []string `json:"roles" yaml:"roles"`
}

func cmdOps() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List declared operations and the roles they require",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			table, err := policy.Load(cfg.Operations)
			if err != nil {
				return err
			}

			rows := make([]opRow, 0, table.Len())
			for _, id := range table.Operations() {
				req, _ := table.Requirement(id)
				rows = append(rows, opRow{ID: id, Match: string(req.Match), Roles: req.Roles})
			}
			return render(cmd.OutOrStdout(), output, rows, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "OPERATION\tMATCH\tROLES")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Match, strings.Join(r.Roles, ","))
				}
			})
		},
	}
}
