package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run a task through the agent team",
		Long: "Recall related memory, fan the task out to the Architect, Engineer, Critic and Researcher, " +
			"synthesize a final directive and vault it as an artifact. Reads the task from stdin when no args are given.",
		Run: runTask,
	}

	cmd.Flags().StringP("priority", "p", "", "Task priority: LOW, NORMAL, HIGH, CRITICAL (default from config)")
	cmd.Flags().Bool("offline", false, "Use deterministic local stubs instead of provider calls")

	RootCmd.AddCommand(cmd)
}

func runTask(cmd *cobra.Command, args []string) {
	task := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		task = string(data)
	}

	s, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	if p, _ := cmd.Flags().GetString("priority"); p != "" {
		level, err := model.ParsePriority(p)
		if err != nil {
			exitErr("priority", err)
		}
		if err := s.SetPriority(level); err != nil {
			exitErr("priority", err)
		}
	}
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		s.SetOnline(false)
	}

	res, err := s.Submit(cmd.Context(), task, func(out model.AgentOutput) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", out.Role, out.Status)
	})
	if err != nil {
		var failure *session.Failure
		if errors.As(err, &failure) {
			exitErr("task", errors.New(failure.Message.Content))
		}
		exitErr("task", err)
	}

	if formatFlag == "text" {
		printArtifact(res.Artifact)
		fmt.Println(res.Confirmation.Content)
		return
	}
	b, _ := json.MarshalIndent(res.Artifact, "", "  ")
	fmt.Println(string(b))
}

func printArtifact(a model.Artifact) {
	fmt.Printf("%s  [%s]  %s\n", a.Title, a.Priority, a.Timestamp.Format("2006-01-02 15:04:05"))
	if a.Degraded {
		fmt.Println("(degraded synthesis)")
	}
	fmt.Println()
	fmt.Println(a.Content)
	for _, o := range a.AgentOutputs {
		fmt.Printf("\n--- %s (%s) ---\n%s\n", o.Role, o.Status, o.Content)
	}
	if len(a.GroundingSources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range a.GroundingSources {
			fmt.Printf("  %s <%s>\n", src.Title, src.URI)
		}
	}
}
