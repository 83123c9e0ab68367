package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/modoboa/installer/internal/compat"
)

// newCompatCmd creates the compat command
func newCompatCmd() *cobra.Command {
	var appVersion string

	cmd := &cobra.Command{
		Use:   "compat",
		Short: "Show extension compatibility for a Modoboa release",
		Long: `Show which extensions are available for a Modoboa release and the
version constraints that release puts on them.

Example:
  modoboa-installer compat --app-version 1.8.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompat(appVersion)
		},
	}

	cmd.Flags().StringVar(&appVersion, "app-version", "latest", "Modoboa release to inspect")

	return cmd
}

func runCompat(appVersion string) error {
	extensions := make([]string, 0, len(compat.ExtensionsAvailability))
	for ext := range compat.ExtensionsAvailability {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)

	constraints := compat.ConstraintsFor(appVersion)

	tw := NewTableWriter(colorOutput, "EXTENSION", "MIN VERSION", "AVAILABLE", "CONSTRAINT")
	for _, ext := range extensions {
		minVersion := compat.ExtensionsAvailability[ext]

		available := "yes"
		if appVersion != "latest" {
			ok, err := compat.ExtensionOKForVersion(ext, appVersion)
			if err != nil {
				return err
			}
			if !ok {
				available = "no"
			}
		}

		constraint := "-"
		if c, found := constraints[ext]; found {
			constraint = c.String()
		}
		tw.AddRow(ext, minVersion, available, constraint)
	}

	fmt.Println()
	return tw.Write()
}
