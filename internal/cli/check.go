package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/config"
	"github.com/TwigBush/roleguard/internal/policy"
	"github.com/TwigBush/roleguard/internal/token"
)

type checkResult struct {
	Operation string `json:"operation" yaml:"operation"`
	Allowed   bool   `json:"allowed"   yaml:"allowed"`
	Reason    string `json:"reason"    yaml:"reason"`
}

// Evaluates offline: the roles come from flags, not from a token.
func cmdCheck() *cobra.Command {
	var op string
	var roles []string
	var noToken bool

	c := &cobra.Command{
		Use:   "check",
		Short: "Evaluate an operation against the configured policy with the given roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			table, err := policy.Load(cfg.Operations)
			if err != nil {
				return err
			}

			var tok authz.Token
			if !noToken {
				g, err := token.Static(cfg.ClientID, roles...)
				if err != nil {
					return fmt.Errorf("--role: %w", err)
				}
				tok = g
			}
			guard, err := authz.NewGuard(authz.Options{
				Requirements: table,
				Tokens: authz.TokenProviderFunc(func(context.Context) (authz.Token, error) {
					if tok == nil {
						return nil, authz.ErrNoToken
					}
					return tok, nil
				}),
				Sink: authz.SlogSink{Logger: cfg.Log.Logger(cmd.ErrOrStderr())},
			})
			if err != nil {
				return err
			}

			d, err := guard.Decide(cmd.Context(), op)
			if err != nil {
				return err
			}
			res := checkResult{Operation: op, Allowed: d.Allowed, Reason: d.Reason}
			return render(cmd.OutOrStdout(), output, res, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "OPERATION\tALLOWED\tREASON")
				fmt.Fprintf(tw, "%s\t%t\t%s\n", res.Operation, res.Allowed, res.Reason)
			})
		},
	}
	c.Flags().StringVar(&op, "op", "", "operation id to check")
	c.Flags().StringArrayVar(&roles, "role", nil, "role held by the caller, repeatable (realm:x, client:x or x)")
	c.Flags().BoolVar(&noToken, "no-token", false, "evaluate as a request without an access token")
	_ = c.MarkFlagRequired("op")
	return c
}
