package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Show the semantic context a task would receive",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	out, err := s.SemanticRecall(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("recall", err)
	}
	fmt.Println(out)
}
