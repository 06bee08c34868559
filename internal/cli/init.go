package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterConfig = `# roleguard configuration. Every key can be overridden with ROLEGUARD_*
# env vars, e.g. ROLEGUARD_GRANTS_BACKEND=introspect.
listen: ":8090"
client_id: %q  # unqualified role names refer to this client's roles
request_timeout: 10s

log:
  level: info
  json: false

grants:
  backend: claims  # claims|introspect|fga
  introspect:
    url: ""
    client_id: ""
    client_secret: ""
    timeout: 5s
  fga:
    api_url: http://localhost:8080
    store_id: ""
    relation: assignee
  cache:
    redis_addr: ""
    ttl: 30s

tracing:
  enabled: false
  endpoint: http://localhost:4318/v1/traces
  sample_ratio: 1.0

operations:
  - id: reports.read
    match: any
    roles: ["viewer", "realm:admin"]
  - id: reports.export
    match: all
    roles: ["viewer", "billing"]
`

func cmdInit() *cobra.Command {
	var clientID string
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config to ~/.roleguard/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := osStat(cfgPath); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", cfgPath)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := ensureDir(filepath.Dir(cfgPath)); err != nil {
				return err
			}
			// Restrict perms to owner, the file may hold client secrets
			if err := writeFile(cfgPath, []byte(fmt.Sprintf(starterConfig, clientID)), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config: %s\n", cfgPath)
			return nil
		},
	}
	c.Flags().StringVar(&clientID, "client-id", "", "client whose roles unqualified names refer to")
	c.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return c
}

func ensureDir(p string) error { return osMkdirAll(p, 0o755) }

func writeFile(path string, b []byte, perm uint32) error {
	return osWriteFile(path, b, perm)
}
