package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/studiobook/pkg/form"
	"github.com/mesh-intelligence/studiobook/pkg/storage"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// attach opens the configured backend. The caller must defer Detach.
func (a *app) attach() (types.Backend, error) {
	cfg, err := a.storageConfig()
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(cfg, a.log)
	if err != nil {
		if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) ||
			errors.Is(err, types.ErrRedisConfig) {
			return nil, userError(err)
		}
		return nil, err
	}
	return backend, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// fieldErrors is the JSON shape of a rejected form.
type fieldErrors struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// reportInvalid prints the form's field errors and returns a user error.
func (a *app) reportInvalid(cmd *cobra.Command, f *form.Form) error {
	errs := f.Errors()
	if a.flags.jsonMode {
		if err := printJSON(cmd.OutOrStdout(), fieldErrors{Valid: false, Errors: errs}); err != nil {
			return err
		}
	} else {
		names := make([]string, 0, len(errs))
		for name := range errs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, errs[name])
		}
	}
	return userError(form.ErrInvalid)
}

// parseValues decodes a JSON object of form values.
func parseValues(raw string) (form.Values, error) {
	var v form.Values
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, userErrorf("parse JSON: %v", err)
	}
	if v == nil {
		return nil, userErrorf("parse JSON: expected an object")
	}
	return v, nil
}
