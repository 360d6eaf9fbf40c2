package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/studiobook/pkg/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Theme preference and signed-in user",
	}
	cmd.AddCommand(newThemeCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	return cmd
}

// withSettings attaches the backend, runs fn with the loaded settings, and
// detaches.
func (a *app) withSettings(fn func(m *settings.Manager) error) error {
	backend, err := a.attach()
	if err != nil {
		return err
	}
	defer backend.Detach()
	return fn(settings.Load(backend, settings.WithLogger(a.log)))
}

func newThemeCmd(a *app) *cobra.Command {
	var systemDark bool
	cmd := &cobra.Command{
		Use:   "theme [light|dark|auto]",
		Short: "Show or set the theme",
		Long: `Theme prints the current theme and whether the dark palette applies.
With an argument it stores a new theme first.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(settings.ThemeLight), string(settings.ThemeDark), string(settings.ThemeAuto)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSettings(func(m *settings.Manager) error {
				if len(args) == 1 {
					if err := m.SetTheme(settings.Theme(args[0])); err != nil {
						if errors.Is(err, settings.ErrInvalidTheme) {
							return userError(err)
						}
						return err
					}
				}
				out := cmd.OutOrStdout()
				dark := m.ResolveDark(systemDark)
				if a.flags.jsonMode {
					return printJSON(out, map[string]any{"theme": m.Theme(), "dark": dark})
				}
				fmt.Fprintf(out, "theme: %s (dark: %v)\n", m.Theme(), dark)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&systemDark, "system-dark", false, "the operating system prefers dark")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var u settings.User
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign a user in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSettings(func(m *settings.Manager) error {
				if err := m.Login(u); err != nil {
					if errors.Is(err, settings.ErrInvalidUser) {
						return userError(err)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed in as", u.Name)
				return nil
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&u.ID, "id", "", "user id")
	fl.StringVar(&u.Name, "name", "", "display name")
	fl.StringVar(&u.Email, "email", "", "email address")
	fl.StringVar(&u.Avatar, "avatar", "", "avatar URL")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign the current user out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSettings(func(m *settings.Manager) error {
				if err := m.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSettings(func(m *settings.Manager) error {
				u, ok := m.User()
				if !ok {
					return userErrorf("not signed in")
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, u)
				}
				fmt.Fprintf(out, "%s <%s> (id %s)\n", u.Name, u.Email, u.ID)
				return nil
			})
		},
	}
}
