// scheduler is the command-line front end for the optimization core: it
// reads a CSV proposal batch and runs the hyper-heuristic optimizer over
// it, printing the resulting timetable to stdout.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ska-sa/obssched/internal/driver"
	"github.com/ska-sa/obssched/internal/heuristic"
	"github.com/ska-sa/obssched/internal/ingest"
	"github.com/ska-sa/obssched/internal/optimizer"
	"github.com/ska-sa/obssched/internal/proposal"
)

// Exit codes per spec §6.
const (
	exitSuccess     = 0
	exitInvalidArgs = 2
	exitIOFailure   = 3
)

var (
	numIndividuals int
	generations    int
	genomeLength   int
	dataFile       string
	startDateFlag  string
	endDateFlag    string
	verbose        bool
)

func main() {
	root := &cobra.Command{
		Use:   "scheduler",
		Short: "Observation proposal scheduling optimizer",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the hyper-heuristic optimizer over a CSV proposal batch",
		RunE:  runSchedule,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	runCmd.Flags().IntVar(&numIndividuals, "num-of-individuals", 50, "population size")
	runCmd.Flags().IntVar(&generations, "generations", 200, "number of generations to evolve")
	runCmd.Flags().IntVar(&genomeLength, "heuristics-combination-length", 8, "hyper-heuristic genome length L")
	runCmd.Flags().StringVar(&dataFile, "data-file", "", "path to the CSV proposal batch (required)")
	runCmd.Flags().StringVar(&startDateFlag, "start-date", "2024-01-01", "planning horizon start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&endDateFlag, "end-date", "2024-01-22", "planning horizon end date (YYYY-MM-DD)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(exitInvalidArgs)
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if dataFile == "" || numIndividuals < 1 || generations < 1 || genomeLength < 1 {
		fmt.Fprintln(os.Stderr, "error: --data-file is required, and --num-of-individuals/--generations/--heuristics-combination-length must be >= 1")
		os.Exit(exitInvalidArgs)
	}

	start, err := time.Parse("2006-01-02", startDateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid --start-date: %v\n", err)
		os.Exit(exitInvalidArgs)
	}
	end, err := time.Parse("2006-01-02", endDateFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid --end-date: %v\n", err)
		os.Exit(exitInvalidArgs)
	}
	horizon, err := proposal.NewHorizon(start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid horizon: %v\n", err)
		os.Exit(exitInvalidArgs)
	}

	file, err := os.Open(dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot open data file: %v\n", err)
		os.Exit(exitIOFailure)
	}
	defer file.Close()

	proposals, err := ingest.ParseCSV(file, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to parse data file: %v\n", err)
		os.Exit(exitIOFailure)
	}

	printer := message.NewPrinter(language.English)
	printer.Printf("loaded %s proposals over a %s horizon\n",
		humanize.Comma(int64(len(proposals))), humanize.Comma(int64(horizon.NumDays())))

	site := proposal.ObserverSite{
		LatitudeDeg:  -30 - 42.0/60 - 39.8/3600,
		LongitudeDeg: 21 + 26.0/60 + 38.0/3600,
	}

	start0 := time.Now()

	req := driver.Request{
		Horizon:   horizon,
		Proposals: proposals,
		Site:      site,
		Antennas:  proposal.ConstantAntennaAvailability(64),
		Encoding:  driver.HyperHeuristicEncoding,
		Seed:      time.Now().UnixNano(),
		HyperHeuristic: optimizer.HyperHeuristicParams{
			PopulationSize: numIndividuals,
			Generations:    generations,
			GenomeLength:   genomeLength,
			MutationRate:   0.1,
			TournamentSize: 3,
			SlotDuration:   heuristic.DefaultSlotDuration,
		},
	}

	result, err := driver.Run(cmd.Context(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: optimizer run failed: %v\n", err)
		os.Exit(exitIOFailure)
	}

	printer.Printf("optimized %s accepted proposals (%s dropped) in %s\n",
		humanize.Comma(int64(result.AcceptedCount)), humanize.Comma(int64(result.DroppedCount)),
		humanize.Time(start0))

	if result.Schedule == nil {
		fmt.Println("no feasible schedule found")
		return nil
	}

	for _, b := range result.Schedule.Bindings {
		if b.Unscheduled {
			fmt.Printf("proposal %d: UNSCHEDULED\n", b.ProposalID)
			continue
		}
		fmt.Printf("proposal %d: %s\n", b.ProposalID, b.Start.Format(time.RFC3339))
	}

	return nil
}
