package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/tracing"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [database]",
	Short: "Print the operation trace stored in an output database",
	Long: `Inspect reads the database that a run produced and prints the ` +
		`recorded kernel operations in order.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true
		inspectDatabase(cmd, args[0])
	},
}

func init() {
	inspectCmd.Flags().Int("limit", 0,
		"largest number of records to print, 0 prints all")
	inspectCmd.Flags().Int("offset", 0, "number of records to skip")
	inspectCmd.Flags().String("kind", "",
		"only print operations of this kind "+
			"(alloc, free, fault, switch, fork)")
	rootCmd.AddCommand(inspectCmd)
}

func inspectDatabase(cmd *cobra.Command, dbPath string) {
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("Error: %v", err)
	}

	reader := datarecording.NewReader(dbPath)
	defer reader.Close()

	reader.MapTable(tracing.TraceTableName, tracing.Record{})

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	kind, _ := cmd.Flags().GetString("kind")

	params := datarecording.QueryParams{
		OrderBy: "Seq",
		Limit:   limit,
		Offset:  offset,
	}
	if kind != "" {
		params.Where = "Kind = ?"
		params.Args = []any{kind}
	}

	results, total, err := reader.Query(
		context.Background(), tracing.TraceTableName, params)
	if err != nil {
		log.Fatalf("Error reading trace: %v", err)
	}

	for _, result := range results {
		record := result.(*tracing.Record)
		fmt.Println(tracing.FormatRecord(*record))
	}

	if len(results) < total {
		fmt.Printf("Showing %d of %d records.\n", len(results), total)
	}
}
