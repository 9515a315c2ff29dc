package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/driver"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/simulation"
	"github.com/sarchlab/vmsim/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run a memory operation script",
	Long: `Run executes a script of memory operations against a simulated ` +
		`kernel. Scripts are line oriented; each line holds one of alloc, free, ` +
		`read, write, switch, or show. Pass - to read the script from standard ` +
		`input.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
		runScript(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().Int("frames", 128, "number of physical frames")
	runCmd.Flags().Int("ptes-per-directory", 16,
		"page-table entries per directory")
	runCmd.Flags().Int("max-processes", 16, "largest number of processes")
	runCmd.Flags().Uint64("page-size", 4096, "page size in bytes")
	runCmd.Flags().Bool("check", false,
		"verify the frame reference counts after every operation")
	runCmd.Flags().Bool("trace", false,
		"log every kernel operation to stderr")
	runCmd.Flags().Bool("monitor", false,
		"serve the monitoring dashboard while the simulation runs")
	runCmd.Flags().Int("monitor-port", 0,
		"port for the monitoring server, 0 picks a random port")
	runCmd.Flags().Bool("open-browser", false,
		"open the monitoring dashboard in a browser")
	runCmd.Flags().String("output", "", "name of the output database file")
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, scriptPath string) {
	// A .env file can predefine VMSIM_* settings.
	_ = godotenv.Load()

	s := buildSimulation(cmd)
	k := s.GetKernel()

	if traceOn, _ := cmd.Flags().GetBool("trace"); traceOn {
		logger := log.New(os.Stderr, "", 0)
		tracing.CollectTraces(k, tracing.NewLogTracer(logger))
	}

	commands := mustParseScript(s, scriptPath)

	d := driver.NewDriver(k).WithOutput(os.Stdout)
	if check, _ := cmd.Flags().GetBool("check"); check {
		d = d.WithCheck()
	}

	if monitor := s.GetMonitor(); monitor != nil {
		if open, _ := cmd.Flags().GetBool("open-browser"); open {
			openDashboard(monitor.Port())
		}

		bar := monitor.CreateProgressBar(
			"Script execution", uint64(len(commands)))

		if err := runWithProgress(d, commands, bar); err != nil {
			s.Terminate()
			log.Fatalf("Error: %v", err)
		}

		monitor.CompleteProgressBar(bar)

		fmt.Fprintln(os.Stderr,
			"Script finished. Press Ctrl-C to stop the monitoring server.")
		waitForInterrupt()
	} else if err := d.RunCommands(commands); err != nil {
		s.Terminate()
		log.Fatalf("Error: %v", err)
	}

	s.Terminate()
}

func buildSimulation(cmd *cobra.Command) *simulation.Simulation {
	frames, _ := cmd.Flags().GetInt("frames")
	ptes, _ := cmd.Flags().GetInt("ptes-per-directory")
	maxProcesses, _ := cmd.Flags().GetInt("max-processes")
	pageSize, _ := cmd.Flags().GetUint64("page-size")

	builder := simulation.MakeBuilder().
		WithNumFrames(frames).
		WithPTEsPerDirectory(ptes).
		WithMaxProcesses(maxProcesses).
		WithPageSize(pageSize)

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = os.Getenv("VMSIM_OUTPUT")
	}
	if output != "" {
		builder = builder.WithOutputFileName(output)
	}

	if monitorOn, _ := cmd.Flags().GetBool("monitor"); monitorOn {
		if port := monitorPort(cmd); port > 0 {
			builder = builder.WithMonitorPort(port)
		}
	} else {
		builder = builder.WithoutMonitoring()
	}

	return builder.Build()
}

func monitorPort(cmd *cobra.Command) int {
	port, _ := cmd.Flags().GetInt("monitor-port")
	if port != 0 {
		return port
	}

	value := os.Getenv("VMSIM_MONITOR_PORT")
	if value == "" {
		return 0
	}

	port, err := strconv.Atoi(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring VMSIM_MONITOR_PORT=%q: %v\n",
			value, err)
		return 0
	}

	return port
}

func mustParseScript(
	s *simulation.Simulation,
	path string,
) []driver.Command {
	script, err := openScript(path)
	if err != nil {
		s.Terminate()
		log.Fatalf("Error: %v", err)
	}
	defer script.Close()

	commands, err := driver.ParseScript(script)
	if err != nil {
		s.Terminate()
		log.Fatalf("Error parsing script: %v", err)
	}

	return commands
}

func openScript(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(path)
}

func runWithProgress(
	d *driver.Driver,
	commands []driver.Command,
	bar *monitoring.ProgressBar,
) error {
	for _, c := range commands {
		bar.IncrementInProgress(1)

		if err := d.RunCommand(c); err != nil {
			return err
		}

		bar.MoveInProgressToFinished(1)
	}

	return nil
}

func openDashboard(port int) {
	url := fmt.Sprintf("http://localhost:%d", port)

	if err := browser.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open a browser: %v\n", err)
	}
}

func waitForInterrupt() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
}
