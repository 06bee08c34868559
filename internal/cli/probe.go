package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func cmdProbe() *cobra.Command {
	var op string
	var tok string
	var method string

	c := &cobra.Command{
		Use:   "probe",
		Short: "Ask a running roleguard whether a token may invoke an operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if op == "" {
				return fmt.Errorf("--op is required")
			}
			u := strings.TrimRight(baseURL, "/") + "/authorize/" + url.PathEscape(op)
			headers := map[string]string{"Accept": "application/json"}
			if tok != "" {
				headers["Authorization"] = "Bearer " + tok
			}
			resp, code, err := httpDo(strings.ToUpper(method), u, headers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d\n", code)
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	c.Flags().StringVar(&op, "op", "", "operation id")
	c.Flags().StringVar(&tok, "token", "", "access token to present, omit to probe anonymously")
	c.Flags().StringVar(&method, "method", "GET", "HTTP method: GET|POST")
	return c
}
