package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/coldsteel/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Show or edit the primary identity",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the identity as YAML",
		Run:   runIdentityShow,
	}
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the identity from a YAML file",
		Run:   runIdentitySet,
	}
	set.Flags().String("file", "", "YAML identity file (as printed by identity show)")
	_ = set.MarkFlagRequired("file")

	theme := &cobra.Command{
		Use:   "theme <STEEL|TITANIUM|BRUTALIST|LIGHT>",
		Short: "Set the identity theme",
		Args:  cobra.ExactArgs(1),
		Run:   runIdentityTheme,
	}

	cmd.AddCommand(show, set, theme)
	RootCmd.AddCommand(cmd)
}

func runIdentityShow(cmd *cobra.Command, args []string) {
	s, cleanup, err := openConfigSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	ident, _ := s.Identity()
	b, err := yaml.Marshal(ident)
	if err != nil {
		exitErr("encode identity", err)
	}
	fmt.Print(string(b))
}

func runIdentitySet(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		exitErr("read identity file", err)
	}

	s, cleanup, err := openConfigSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	// Start from the stored identity so a partial file only edits what it names.
	ident, _ := s.Identity()
	if err := yaml.Unmarshal(data, &ident); err != nil {
		exitErr("parse identity file", err)
	}
	if err := s.UpdateIdentity(cmd.Context(), ident); err != nil {
		exitErr("update identity", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", ident.ID)
}

func runIdentityTheme(cmd *cobra.Command, args []string) {
	s, cleanup, err := openConfigSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	theme := model.Theme(strings.ToUpper(args[0]))
	if err := s.SetTheme(cmd.Context(), theme); err != nil {
		exitErr("set theme", err)
	}
	fmt.Printf(`{"ok":true,"theme":%q}`+"\n", theme)
}
