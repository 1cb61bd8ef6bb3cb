package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spigell/cv-matcher/internal/batch"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/report"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var batchCmd = &cobra.Command{
	Use:   "batch <documents.json>",
	Short: "Prioritize a batch of processed documents and render the batch report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
}

func runBatch(cmd *cobra.Command, args []string) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	docs, err := batch.LoadFile(args[0])
	if err != nil {
		logger.Fatal("loading batch documents", zap.Error(err))
	}

	sorted := batch.Sort(docs)
	metrics := batch.ComputeMetrics(sorted)

	logger.Info("batch prioritized",
		zap.Int("documents", metrics.TotalDocuments),
		zap.Int("with_action", metrics.DocsWithAction),
		zap.Int("critical_errors", metrics.CriticalErrors),
		zap.String("batch_status", metrics.BatchStatus),
	)

	out := report.BatchMarkdown(report.NewID(), sorted, metrics)

	output := cmd.Flag("output").Value.String()
	if output == "" {
		fmt.Println(out)
		return
	}

	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		logger.Fatal("writing batch report", zap.Error(err))
	}

	logger.Info("wrote batch report", zap.String("filename", output))
}
