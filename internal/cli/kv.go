package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

func newKVCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kv",
		Short: "Inspect and edit raw stored values",
	}
	cmd.AddCommand(newKVGetCmd(a))
	cmd.AddCommand(newKVSetCmd(a))
	cmd.AddCommand(newKVDeleteCmd(a))
	cmd.AddCommand(newKVKeysCmd(a))
	return cmd
}

// withKV attaches the backend, runs fn, and detaches.
func (a *app) withKV(fn func(kv types.KV) error) error {
	backend, err := a.attach()
	if err != nil {
		return err
	}
	defer backend.Detach()
	return fn(backend)
}

func kvUserError(err error) error {
	if errors.Is(err, types.ErrInvalidKey) {
		return userError(err)
	}
	return err
}

func newKVGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the JSON value stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withKV(func(kv types.KV) error {
				var v json.RawMessage
				found, err := kv.Get(args[0], &v)
				if err != nil {
					return kvUserError(err)
				}
				if !found {
					return userErrorf("key %q not found", args[0])
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
}

func newKVSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under a key",
		Long: `Set replaces the whole value stored under key.

Example:
  studio kv set theme '"dark"'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[1])) {
				return userErrorf("value is not valid JSON")
			}
			return a.withKV(func(kv types.KV) error {
				if err := kv.Set(args[0], json.RawMessage(args[1])); err != nil {
					return kvUserError(err)
				}
				return nil
			})
		},
	}
}

func newKVDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withKV(func(kv types.KV) error {
				return kvUserError(kv.Delete(args[0]))
			})
		},
	}
}

func newKVKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List stored keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return a.withKV(func(kv types.KV) error {
				keys, err := kv.Keys(prefix)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, keys)
				}
				for _, k := range keys {
					fmt.Fprintln(out, k)
				}
				return nil
			})
		},
	}
}
