package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/coldsteel/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import artifacts from JSON",
		Long:  "Import artifacts from JSON on stdin. Expects the format produced by export; ids already in the vault are skipped.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var arts []model.Artifact
	if err := json.Unmarshal(data, &arts); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.ImportArtifacts(cmd.Context(), arts)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
