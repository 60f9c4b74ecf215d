package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Browse the artifact vault",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List artifacts, newest first",
		Run:   runArtifactsList,
	}
	list.Flags().IntP("limit", "l", 20, "Max results")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one artifact",
		Args:  cobra.ExactArgs(1),
		Run:   runArtifactsShow,
	}

	cmd.AddCommand(list, show)
	RootCmd.AddCommand(cmd)
}

type artifactSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority,omitempty"`
	Time     string `json:"timestamp"`
	Degraded bool   `json:"degraded,omitempty"`
}

func runArtifactsList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	arts, err := s.ListArtifacts(cmd.Context())
	if err != nil {
		exitErr("list artifacts", err)
	}
	if limit > 0 && len(arts) > limit {
		arts = arts[:limit]
	}

	if formatFlag == "text" {
		for _, a := range arts {
			fmt.Printf("%s  %s  %-8s %s\n", a.ID, a.Timestamp.Format("2006-01-02 15:04"), a.Priority, a.Title)
		}
		return
	}
	summaries := make([]artifactSummary, 0, len(arts))
	for _, a := range arts {
		summaries = append(summaries, artifactSummary{
			ID:       a.ID,
			Title:    a.Title,
			Priority: string(a.Priority),
			Time:     a.Timestamp.Format(time.RFC3339),
			Degraded: a.Degraded,
		})
	}
	b, _ := json.MarshalIndent(summaries, "", "  ")
	fmt.Println(string(b))
}

func runArtifactsShow(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	a, err := s.GetArtifact(cmd.Context(), args[0])
	if err != nil {
		exitErr("get artifact", err)
	}

	if formatFlag == "text" {
		printArtifact(a)
		return
	}
	b, _ := json.MarshalIndent(a, "", "  ")
	fmt.Println(string(b))
}
