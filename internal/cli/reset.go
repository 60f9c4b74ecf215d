package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Factory reset: wipe the identity and message log",
		Long:  "Deletes the primary identity and every log message, then restores the default identity. Provider configs and artifacts are kept.",
		Run:   runReset,
	}

	cmd.Flags().Bool("yes", false, "Confirm the reset")

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		exitErr("reset", errors.New("refusing to wipe identity and logs without --yes"))
	}

	s, cleanup, err := openConfigSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	if err := s.FactoryReset(cmd.Context()); err != nil {
		exitErr("reset", err)
	}
	ident, _ := s.Identity()
	fmt.Printf(`{"ok":true,"identity":%q}`+"\n", ident.DisplayName)
}
