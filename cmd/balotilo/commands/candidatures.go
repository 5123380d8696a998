package commands

import (
	"log/slog"

	"github.com/dan-ringwald/balotilo/lib/candidatures"
	"github.com/dan-ringwald/balotilo/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanCandidaturesCmd)
	rootCmd.AddCommand(splitListsCmd)
	rootCmd.AddCommand(extractVotersCmd)
}

var cleanCandidaturesCmd = &cobra.Command{
	Use:   "clean-candidatures <in.csv> <out.csv>",
	Short: "Redacts emails and phone numbers out of a raw candidatures export.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := candidatures.CleanCSV(args[0], args[1]); err != nil {
			serviceutil.Fatal("failed to clean candidatures", err)
		}
		slog.Info("wrote cleaned candidatures", "path", args[1])
	},
}

var splitListsCmd = &cobra.Command{
	Use:   "split-lists <clean.csv> <elections-dir>",
	Short: "Distributes candidate lists into per-election candidates.yaml files by department.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		placed, err := candidatures.SplitLists(args[0], args[1])
		if err != nil {
			serviceutil.Fatal("failed to split lists", err)
		}
		slog.Info("distributed candidate lists", "lists", placed)
	},
}

var extractVotersCmd = &cobra.Command{
	Use:   "extract-voters <elections-dir>",
	Short: "Extracts the Email column of each votants_*.csv roll into voters.txt.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		processed, failed, err := candidatures.ExtractVoters(args[0])
		if err != nil {
			serviceutil.Fatal("failed to extract voters", err)
		}
		slog.Info("extracted voters", "processed", processed, "failed", failed)
	},
}
