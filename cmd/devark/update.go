package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devark-ai/devark/internal/update"
)

var updateForce bool

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false,
		"skip the cache and query GitHub directly")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer devark release",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		info, err := update.Check(version, updateForce, a.cfg.DataDir)
		if err != nil {
			return err
		}
		if info == nil {
			fmt.Println(successStyle.Render(
				"devark is up to date."))
			return nil
		}
		if info.IsDevBuild {
			fmt.Printf("Running a dev build; latest release is %s\n",
				info.LatestVersion)
		} else {
			fmt.Printf("Update available: %s -> %s\n",
				info.CurrentVersion, info.LatestVersion)
		}
		if info.ReleaseURL != "" {
			fmt.Println(urlStyle.Render(info.ReleaseURL))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the devark version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
