package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List the message log, oldest first",
		Run:   runLogs,
	}

	cmd.Flags().Bool("purge", false, "Delete every log message instead of listing")

	RootCmd.AddCommand(cmd)
}

func runLogs(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if purge, _ := cmd.Flags().GetBool("purge"); purge {
		if err := s.PurgeLogs(cmd.Context()); err != nil {
			exitErr("purge logs", err)
		}
		fmt.Println(`{"ok":true,"purged":true}`)
		return
	}

	logs, err := s.ListLogs(cmd.Context())
	if err != nil {
		exitErr("list logs", err)
	}

	if formatFlag == "text" {
		for _, m := range logs {
			tag := ""
			if m.IsTranscription {
				tag = " (voice)"
			}
			fmt.Printf("%s %-9s%s %s\n", m.Timestamp.Format("15:04:05"), m.Role, tag, m.Content)
		}
		return
	}
	b, _ := json.MarshalIndent(logs, "", "  ")
	fmt.Println(string(b))
}
