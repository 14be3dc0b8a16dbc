package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build details of frd-engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		info := readBuildInfo()
		if jsonOutput {
			return printJSON(info)
		}
		writeVersion(cmd.OutOrStdout(), info)
		return nil
	},
}

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

func readBuildInfo() buildInfo {
	info := buildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func writeVersion(w io.Writer, info buildInfo) {
	fmt.Fprintf(w, "frd-engine %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
	if info.Revision != "" {
		rev := info.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if info.Modified {
			rev += "+dirty"
		}
		fmt.Fprintf(w, "revision %s\n", rev)
	}
}

func init() {
	versionCmd.Flags().Bool("json", false, "output build details as JSON")
	rootCmd.AddCommand(versionCmd)
}
