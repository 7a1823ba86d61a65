package cli

import (
	"fmt"
	"time"

	"github.com/localnerve/backoffice-propsdb/internal/auth"
	"github.com/spf13/cobra"
)

func newResourcesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the resources served by the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.client()
			if err != nil {
				return err
			}
			defs, err := c.Definitions(cmd.Context())
			if err != nil {
				return err
			}
			for _, def := range defs {
				fmt.Fprintf(o.out, "%-24s %-7s %s\n", def.Name, def.Kind, def.Title)
			}
			return nil
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	var record, field string

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List the records of a resource, or the entries of one nested list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.page(cmd, args[0])
			if err != nil {
				return err
			}
			if field != "" {
				return o.print(p.Items(record, field))
			}
			return o.print(p.Records())
		},
	}
	cmd.Flags().StringVar(&record, "record", "", "record holding the nested list (empty for a property report)")
	cmd.Flags().StringVar(&field, "field", "", "nested list to print")
	return cmd
}

func newViewCmd(o *options) *cobra.Command {
	var field, ref string

	cmd := &cobra.Command{
		Use:   "view <resource> <record>",
		Short: "Show one record or one nested entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.page(cmd, args[0])
			if err != nil {
				return err
			}
			if err := p.OpenView(args[1], field, ref); err != nil {
				return err
			}
			defer p.CloseView()

			selection, _ := p.View.Payload()
			return o.print(selection.Record)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "nested list of the entry")
	cmd.Flags().StringVar(&ref, "ref", "", "entry id, or index for entries without one")
	return cmd
}

func newAddCmd(o *options) *cobra.Command {
	var record, field, raw string
	var set []string

	cmd := &cobra.Command{
		Use:   "add <resource>",
		Short: "Add a record, or an entry to a nested list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(set, raw)
			if err != nil {
				return err
			}
			p, err := o.page(cmd, args[0])
			if err != nil {
				return err
			}

			if field != "" {
				err = p.OpenAddItem(record, field)
			} else {
				err = p.OpenCreate()
			}
			if err != nil {
				return err
			}
			return o.submit(cmd, p, values)
		},
	}
	cmd.Flags().StringVar(&record, "record", "", "record holding the nested list (empty for a property report)")
	cmd.Flags().StringVar(&field, "field", "", "nested list to add to")
	cmd.Flags().StringArrayVar(&set, "set", nil, "value as key=value, repeatable")
	cmd.Flags().StringVar(&raw, "json", "", "values as a JSON object")
	return cmd
}

func newEditCmd(o *options) *cobra.Command {
	var field, ref, raw string
	var set []string

	cmd := &cobra.Command{
		Use:   "edit <resource> <record>",
		Short: "Edit a record, a nested entry or a nested object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(set, raw)
			if err != nil {
				return err
			}
			p, err := o.page(cmd, args[0])
			if err != nil {
				return err
			}

			switch {
			case field == "":
				err = p.OpenEdit(args[1])
			case ref != "":
				err = p.OpenEditItem(args[1], field, ref)
			default:
				err = p.OpenEditObject(args[1], field)
			}
			if err != nil {
				return err
			}
			return o.submit(cmd, p, values)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "nested list or nested object to edit")
	cmd.Flags().StringVar(&ref, "ref", "", "entry id, or index for entries without one")
	cmd.Flags().StringArrayVar(&set, "set", nil, "value as key=value, repeatable")
	cmd.Flags().StringVar(&raw, "json", "", "values as a JSON object")
	return cmd
}

func newDeleteCmd(o *options) *cobra.Command {
	var field, ref string

	cmd := &cobra.Command{
		Use:   "delete <resource> <record>",
		Short: "Delete a record or one nested entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.page(cmd, args[0])
			if err != nil {
				return err
			}

			var sent bool
			if field != "" {
				sent, err = p.DeleteItem(cmd.Context(), args[1], field, ref)
			} else {
				sent, err = p.Delete(cmd.Context(), args[1])
			}
			if err != nil {
				return pageError(p, err)
			}
			if !sent {
				fmt.Fprintln(o.out, "Cancelled")
				return nil
			}
			fmt.Fprintln(o.out, "Deleted")
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "nested list of the entry")
	cmd.Flags().StringVar(&ref, "ref", "", "entry id, or index for entries without one")
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the caller's identity and role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.client()
			if err != nil {
				return err
			}
			me, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			return o.print(me)
		},
	}
}

func newTokenCmd(o *options) *cobra.Command {
	var secret, user, role, email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.IssueToken(secret, user, role, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(o.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "JWT_SECRET of the server")
	cmd.Flags().StringVar(&user, "user", "", "user id (sub claim)")
	cmd.Flags().StringVar(&role, "role", "admin", "role claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
