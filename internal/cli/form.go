package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/studiobook/pkg/form"
	"github.com/mesh-intelligence/studiobook/pkg/forms"
)

func newFormCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Check and submit client forms",
	}
	cmd.AddCommand(newFormListCmd(a))
	cmd.AddCommand(newFormCheckCmd(a))
	cmd.AddCommand(newFormSubmitCmd(a))
	cmd.AddCommand(newFormSubmissionsCmd(a))
	return cmd
}

func lookupForm(name string) (forms.Definition, error) {
	def, ok := forms.Lookup(name)
	if !ok {
		return forms.Definition{}, userErrorf("unknown form %q (valid: %s)", name, strings.Join(forms.Names(), ", "))
	}
	return def, nil
}

// fillForm builds the named form and applies the values in raw, a JSON
// object.
func fillForm(name, raw string, onSubmit form.SubmitFunc) (*form.Form, error) {
	def, err := lookupForm(name)
	if err != nil {
		return nil, err
	}
	values, err := parseValues(raw)
	if err != nil {
		return nil, err
	}
	f := def.New(onSubmit)
	f.Fill(values)
	return f, nil
}

func newFormListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type entry struct {
				Name     string   `json:"name"`
				Title    string   `json:"title"`
				Required []string `json:"validated"`
			}
			var entries []entry
			for _, name := range forms.Names() {
				def, _ := forms.Lookup(name)
				entries = append(entries, entry{Name: def.Name, Title: def.Title, Required: def.Required()})
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, entries)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tVALIDATED FIELDS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Title, strings.Join(e.Required, ", "))
			}
			return tw.Flush()
		},
	}
}

func newFormCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <form> <json>",
		Short: "Validate form values without submitting",
		Long: `Check fills the named form with the JSON object's values and runs full
validation. It exits 1 and prints each field error when the form is invalid.

Example:
  studio form check contact '{"firstName":"Ada","email":"ada@example.com"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fillForm(args[0], args[1], nil)
			if err != nil {
				return err
			}
			if !f.ValidateAll() {
				return a.reportInvalid(cmd, f)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), fieldErrors{Valid: true, Errors: map[string]string{}})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func newFormSubmitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <form> <json>",
		Short: "Validate and record a form submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := lookupForm(args[0]); err != nil {
				return err
			}
			backend, err := a.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			rec := forms.NewRecorder(backend, forms.WithRecorderLogger(a.log))
			var recorded forms.Submission
			f, err := fillForm(args[0], args[1], rec.SubmitFunc(args[0], func(s forms.Submission) {
				recorded = s
			}))
			if err != nil {
				return err
			}
			if err := f.Submit(); err != nil {
				if errors.Is(err, form.ErrInvalid) {
					return a.reportInvalid(cmd, f)
				}
				return err
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), recorded)
			}
			fmt.Fprintln(cmd.OutOrStdout(), recorded.ID)
			return nil
		},
	}
}

func newFormSubmissionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions <form>",
		Short: "List recorded submissions of a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := lookupForm(args[0]); err != nil {
				return err
			}
			backend, err := a.attach()
			if err != nil {
				return err
			}
			defer backend.Detach()

			list, err := forms.NewRecorder(backend, forms.WithRecorderLogger(a.log)).List(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				if list == nil {
					list = []forms.Submission{}
				}
				return printJSON(out, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No submissions.")
				return nil
			}
			for _, s := range list {
				fmt.Fprintf(out, "%s  %s\n", s.SubmittedAt.Format("2006-01-02 15:04:05"), s.ID)
			}
			return nil
		},
	}
}
