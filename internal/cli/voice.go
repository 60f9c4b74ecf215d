package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/session"
	"github.com/rcliao/coldsteel/internal/voice"
)

func init() {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Open the live voice bridge until interrupted",
		Long: "Streams 16 kHz mono PCM audio to the live model and records transcripts in the message log. " +
			"With --dictate, user speech is collected and printed as a task draft on exit instead.",
		Run: runVoice,
	}

	cmd.Flags().String("audio", "-", "PCM source file, or - for stdin")
	cmd.Flags().Bool("dictate", false, "Collect user speech as input instead of logging it")

	RootCmd.AddCommand(cmd)
}

func runVoice(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var audio io.Reader = os.Stdin
	if path, _ := cmd.Flags().GetString("audio"); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			exitErr("open audio", err)
		}
		defer f.Close()
		audio = f
	}
	dictate, _ := cmd.Flags().GetBool("dictate")

	bridge := voice.NewLiveBridge(voice.WithLogger(logger), voice.WithAudioInput(audio))
	s, _, cleanup, err := openSession(ctx,
		session.WithBridge(bridge),
		session.WithTranscriptObserver(func(m model.Message) {
			fmt.Printf("%s: %s\n", m.Role, m.Content)
		}))
	if err != nil {
		exitErr("open session", err)
	}
	defer cleanup()

	if err := s.StartVoice(ctx, dictate); err != nil {
		exitErr("start voice", err)
	}
	fmt.Fprintln(os.Stderr, "live bridge open, interrupt to close")
	<-ctx.Done()

	if err := s.StopVoice(); err != nil {
		exitErr("stop voice", err)
	}
	if dictate {
		if draft := s.TakeInput(); draft != "" {
			fmt.Println(draft)
		}
	}
}
