// Package cli implements the backoffice command line client
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/localnerve/backoffice-propsdb/internal/config"
	"github.com/localnerve/backoffice-propsdb/pkg/client"
	"github.com/spf13/cobra"
)

// options are the flags shared by every command
type options struct {
	baseURL    string
	token      string
	propertyID string
	legacy     bool
	yes        bool

	in  io.Reader
	out io.Writer
}

// NewRootCommand builds the backoffice command tree reading confirmations from in
// and writing results to out
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{in: in, out: out}

	rootCmd := &cobra.Command{
		Use:   "backoffice",
		Short: "Manage property back-office records from the command line",
		Long: `backoffice lists, views, adds, edits and deletes the records of the
back-office API, including the entries of their nested lists.

BACKOFFICE_URL and BACKOFFICE_TOKEN are read from the environment or a .env file.`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", "", "API base URL (overrides BACKOFFICE_URL)")
	flags.StringVar(&opts.token, "token", "", "bearer token (overrides BACKOFFICE_TOKEN)")
	flags.StringVarP(&opts.propertyID, "property", "p", "", "property the page is scoped to")
	flags.BoolVar(&opts.legacy, "legacy", false, "write nested changes by replacing the whole record")

	rootCmd.AddCommand(
		newResourcesCmd(opts),
		newListCmd(opts),
		newViewCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newWhoamiCmd(opts),
		newTokenCmd(opts),
	)
	return rootCmd
}

// Execute runs the command line against the process stdio
func Execute() {
	if err := NewRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) client() (*client.Client, error) {
	cfg, err := config.LoadClient(o.baseURL, o.token)
	if err != nil {
		return nil, err
	}
	return client.NewClient(cfg.BaseURL, cfg.Token, client.WithTimeout(cfg.Timeout)), nil
}

func (o *options) page(cmd *cobra.Command, resource string) (*client.Page, error) {
	c, err := o.client()
	if err != nil {
		return nil, err
	}

	pageOpts := []client.PageOption{client.WithConfirm(o.confirm)}
	if o.legacy {
		pageOpts = append(pageOpts, client.WithLegacyWrites())
	}

	p := client.NewPage(c, resource, o.propertyID, pageOpts...)
	if err := p.Load(cmd.Context()); err != nil {
		return nil, pageError(p, err)
	}
	return p, nil
}

// confirm asks on the command input unless --yes was given
func (o *options) confirm(prompt string) bool {
	if o.yes {
		return true
	}
	fmt.Fprintf(o.out, "%s [y/N] ", prompt)
	answer, _ := bufio.NewReader(o.in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (o *options) print(v interface{}) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pageError reports the page banner, keeping the cause for the details
func pageError(p *client.Page, err error) error {
	if p.Error() == "" {
		return err
	}
	return fmt.Errorf("%s: %w", p.Error(), err)
}

// parseValues reads key=value pairs. Values that parse as JSON keep their JSON type,
// anything else is a string.
func parseValues(pairs []string, raw string) (client.Record, error) {
	values := client.Record{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, fmt.Errorf("--json must be a JSON object: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: expected key=value", pair)
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			values[key] = decoded
		} else {
			values[key] = value
		}
	}
	return values, nil
}

// submit fills the open draft with values and writes it
func (o *options) submit(cmd *cobra.Command, p *client.Page, values client.Record) error {
	for k, v := range values {
		if err := p.SetValue(k, v); err != nil {
			return err
		}
	}
	if err := p.Submit(cmd.Context()); err != nil {
		return pageError(p, err)
	}
	fmt.Fprintln(o.out, "Saved")
	return nil
}
