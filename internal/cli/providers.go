package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/coldsteel/internal/config"
	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage provider configs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List provider configs (API keys masked)",
		Run:   runProvidersList,
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a provider config from a YAML file",
		Run:   runProvidersAdd,
	}
	add.Flags().String("file", "", "YAML provider config")
	_ = add.MarkFlagRequired("file")

	cmd.AddCommand(list, add,
		providerCmd("rm <id>", "Delete a provider config", 1, func(c *cobra.Command, s *session.Session, args []string) error {
			return s.DeleteProvider(c.Context(), args[0])
		}),
		providerCmd("enable <id>", "Enable a provider (requires base URL and API key)", 1, func(c *cobra.Command, s *session.Session, args []string) error {
			return s.SetProviderEnabled(c.Context(), args[0], true)
		}),
		providerCmd("disable <id>", "Disable a provider", 1, func(c *cobra.Command, s *session.Session, args []string) error {
			return s.SetProviderEnabled(c.Context(), args[0], false)
		}),
		providerCmd("key <id> <api-key>", "Set a provider's API key", 2, func(c *cobra.Command, s *session.Session, args []string) error {
			return s.SetAPIKey(c.Context(), args[0], args[1])
		}),
		providerCmd("url <id> <base-url>", "Set a provider's base URL", 2, func(c *cobra.Command, s *session.Session, args []string) error {
			return s.SetBaseURL(c.Context(), args[0], args[1])
		}),
		providerCmd("model <id> <model-id>", "Select one of a provider's models", 2, func(c *cobra.Command, s *session.Session, args []string) error {
			return s.SetSelectedModel(c.Context(), args[0], args[1])
		}),
		providerCmd("select <id>", "Make a provider the active one", 1, func(c *cobra.Command, s *session.Session, args []string) error {
			if err := s.SelectProvider(args[0]); err != nil {
				return err
			}
			_, err := config.Persist(cfg.File, "active_provider", args[0])
			return err
		}),
	)
	RootCmd.AddCommand(cmd)
}

// providerCmd builds a subcommand that applies one session mutation.
func providerCmd(use, short string, nargs int, apply func(*cobra.Command, *session.Session, []string) error) *cobra.Command {
	name := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		Run: func(cmd *cobra.Command, args []string) {
			s, cleanup, err := openConfigSession(cmd.Context())
			if err != nil {
				exitErr("open session", err)
			}
			defer cleanup()

			if err := apply(cmd, s, args); err != nil {
				exitErr("providers "+name, err)
			}
			fmt.Printf(`{"ok":true,"provider":%q}`+"\n", args[0])
		},
	}
}

type providerView struct {
	model.ProviderConfig
	Active bool `json:"active"`
}

func runProvidersList(cmd *cobra.Command, args []string) {
	s, cleanup, err := openConfigSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	active, _ := s.ActiveProvider()
	var views []providerView
	for _, p := range s.Providers() {
		p.APIKey = maskKey(p.APIKey)
		views = append(views, providerView{ProviderConfig: p, Active: p.ID == active.ID})
	}

	if formatFlag == "text" {
		for _, v := range views {
			mark := " "
			if v.Active {
				mark = "*"
			}
			state := "disabled"
			if v.Enabled {
				state = "enabled"
			}
			fmt.Printf("%s %-24s %-16s %-9s %s\n", mark, v.ID, v.Type, state, v.SelectedModelID)
		}
		return
	}
	b, _ := json.MarshalIndent(views, "", "  ")
	fmt.Println(string(b))
}

func maskKey(k string) string {
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

func runProvidersAdd(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		exitErr("read provider file", err)
	}
	var p model.ProviderConfig
	if err := yaml.Unmarshal(data, &p); err != nil {
		exitErr("parse provider file", err)
	}

	s, cleanup, err := openConfigSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	if err := s.AddProvider(cmd.Context(), p); err != nil {
		exitErr("add provider", err)
	}
	fmt.Printf(`{"ok":true,"provider":%q}`+"\n", p.ID)
}
