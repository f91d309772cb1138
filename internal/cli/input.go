package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acheong08/threatlens/internal/config"
	"github.com/acheong08/threatlens/internal/netprobe"
	"github.com/acheong08/threatlens/internal/preprocess"
	"github.com/acheong08/threatlens/internal/registry"
	"github.com/acheong08/threatlens/pkg/models"
)

var errNoContent = errors.New("no content given, pass it as an argument, @file or - for stdin")

// readContent resolves the positional arguments to analysis content.
// "-" reads stdin and "@path" reads a file. Anything else is taken literally.
func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		return "", errNoContent
	}
	if len(args) == 1 {
		switch arg := args[0]; {
		case arg == "-":
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return "", fmt.Errorf("reading stdin: %w", err)
			}
			return string(data), nil
		case strings.HasPrefix(arg, "@") && len(arg) > 1:
			data, err := os.ReadFile(arg[1:])
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", arg[1:], err)
			}
			return string(data), nil
		}
	}
	return strings.Join(args, " "), nil
}

func newPreprocessors(cfg *config.Config) *preprocess.Preprocessors {
	return preprocess.New(registry.NewClient(cfg.RegistryURL), netprobe.NewProber())
}

// kindFlagUsage is shared by every command that takes --type
var kindFlagUsage = fmt.Sprintf("analysis type (%s)", models.KindNames())
