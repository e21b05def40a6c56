package cmd

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/eslsoft/bookdrill/internal/infrastructure/config"
	"github.com/eslsoft/bookdrill/internal/infrastructure/database"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportTablesKey = "backup.export.tables"
	exportBatchKey  = "backup.export.batch_size"
)

// backupRecord is one NDJSON line of an export file.
type backupRecord struct {
	Table string         `json:"table"`
	Row   map[string]any `json:"row"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scheduling data as an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		tableList := tablesFromConfig(exportTablesKey)
		batchSize := viper.GetInt(exportBatchKey)
		if batchSize <= 0 {
			batchSize = 512
		}
		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		var (
			writer   = cmd.OutOrStdout()
			closeFns []func() error
		)
		if outputPath != "-" {
			if dir := filepath.Dir(outputPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			file, openErr := os.Create(outputPath)
			if openErr != nil {
				return fmt.Errorf("create backup file: %w", openErr)
			}
			writer = file
			closeFns = append(closeFns, file.Close)
		}
		if gzipEnabled {
			gz := gzip.NewWriter(writer)
			writer = gz
			closeFns = append([]func() error{gz.Close}, closeFns...)
		}
		defer func() {
			for _, closer := range closeFns {
				if cerr := closer(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		buffered := bufio.NewWriter(writer)
		enc := json.NewEncoder(buffered)
		for _, table := range selectTables(tableList) {
			count, err := exportTable(db, enc, table, batchSize)
			if err != nil {
				return fmt.Errorf("export %s: %w", table, err)
			}
			cmd.PrintErrf("exported %s: %d rows\n", table, count)
		}
		if err := buffered.Flush(); err != nil {
			return err
		}

		if outputPath == "-" {
			cmd.PrintErrln("export complete: wrote to stdout")
		} else {
			cmd.PrintErrf("export complete: %s\n", outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup output path, use - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip-compress the output")
	exportCmd.Flags().StringSlice("tables", nil, "export only the given tables")
	exportCmd.Flags().Int("batch-size", 0, "rows per read batch (default 512)")

	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportTablesKey, exportCmd.Flags().Lookup("tables"))
	bindFlagToViper(exportBatchKey, exportCmd.Flags().Lookup("batch-size"))
}

func exportTable(db *gorm.DB, enc *json.Encoder, table string, batchSize int) (int, error) {
	total := 0
	for offset := 0; ; offset += batchSize {
		var rows []map[string]any
		if err := db.Table(table).
			Order("id").
			Limit(batchSize).
			Offset(offset).
			Find(&rows).Error; err != nil {
			return total, err
		}
		for _, row := range rows {
			if err := enc.Encode(backupRecord{Table: table, Row: row}); err != nil {
				return total, err
			}
		}
		total += len(rows)
		if len(rows) < batchSize {
			return total, nil
		}
	}
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("bookdrill-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}
