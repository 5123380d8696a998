package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/dan-ringwald/balotilo/lib/restyutil"
	"github.com/dan-ringwald/balotilo/lib/scrapers/balotilo"
	"github.com/dan-ringwald/balotilo/lib/telemetry"
	"github.com/dan-ringwald/balotilo/lib/util/serviceutil"
	"github.com/dan-ringwald/balotilo/services/elections"

	"github.com/spf13/cobra"
)

var (
	runElectionsDir *string
	runBaseUrl      *string
	runJournal      *string
	runDelay        *time.Duration
	runDumpHttp     *bool
)

func init() {
	runElectionsDir = runCmd.Flags().String("elections-dir", "elections/", "The directory holding config.yaml and one subdirectory per election.")
	runBaseUrl = runCmd.Flags().String("base-url", "https://www.balotilo.org", "The base url of the voting platform.")
	runJournal = runCmd.Flags().String("journal", "journal.db", "The database to record outcomes to.")
	runDelay = runCmd.Flags().Duration("delay", time.Second*2, "The pause between consecutive elections.")
	runDumpHttp = runCmd.Flags().Bool("dump-http", false, "Dump http exchanges to .dev/resty/balotilo for debugging.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <email> <password>",
	Short: "Creates every election declared under the elections directory and imports its voters.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		telemetry.InstrumentPerfStats(ctx)

		client, err := balotilo.NewClient(balotilo.ClientOptions{
			BaseUrl: *runBaseUrl,
			Credentials: balotilo.Credentials{
				Email:    args[0],
				Password: args[1],
			},
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}
		if *runDumpHttp {
			client.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/balotilo"))
		}

		journal, err := elections.OpenJournal(*runJournal)
		if err != nil {
			serviceutil.Fatal("failed to open journal", err)
		}
		defer journal.Close()

		runner := &elections.Runner{
			Client:  client,
			Journal: journal,
			Delay:   *runDelay,
		}

		t1 := time.Now()
		outcomes, err := runner.ProcessAll(ctx, *runElectionsDir)
		if err != nil {
			serviceutil.Fatal("batch aborted", err)
		}
		t2 := time.Now()

		elections.RenderSummary(os.Stdout, outcomes)
		slog.Info("batch time", "seconds", t2.Sub(t1).Seconds())
	},
}
