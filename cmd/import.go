package cmd

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/eslsoft/bookdrill/internal/infrastructure/config"
	"github.com/eslsoft/bookdrill/internal/infrastructure/database"
)

const (
	importInputKey    = "backup.import.input"
	importTruncateKey = "backup.import.truncate"
	importTablesKey   = "backup.import.tables"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore scheduling data from an NDJSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		inputPath := viper.GetString(importInputKey)
		truncate := viper.GetBool(importTruncateKey)
		tables := selectTables(tablesFromConfig(importTablesKey))
		if inputPath == "" {
			return fmt.Errorf("--input is required")
		}

		db, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		if err := database.Migrate(db); err != nil {
			return err
		}

		var reader io.Reader = cmd.InOrStdin()
		if inputPath != "-" {
			file, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("open backup file: %w", err)
			}
			defer file.Close()
			reader = file
			if strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
				gz, err := gzip.NewReader(file)
				if err != nil {
					return fmt.Errorf("open gzip stream: %w", err)
				}
				defer gz.Close()
				reader = gz
			}
		}

		counts, err := importBackup(db, reader, tables, truncate)
		if err != nil {
			return err
		}
		for _, table := range tables {
			if n, ok := counts[table]; ok {
				cmd.PrintErrf("imported %s: %d rows\n", table, n)
			}
		}
		cmd.PrintErrln("import complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup input path, use - for stdin")
	importCmd.Flags().Bool("truncate", false, "delete existing rows in imported tables first")
	importCmd.Flags().StringSlice("tables", nil, "import only the given tables")

	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importTruncateKey, importCmd.Flags().Lookup("truncate"))
	bindFlagToViper(importTablesKey, importCmd.Flags().Lookup("tables"))
}

func importBackup(db *gorm.DB, reader io.Reader, tables []string, truncate bool) (map[string]int, error) {
	allowed := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		allowed[table] = struct{}{}
	}

	counts := make(map[string]int)
	return counts, db.Transaction(func(tx *gorm.DB) error {
		if truncate {
			for _, table := range tables {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("truncate %s: %w", table, err)
				}
			}
		}

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			raw := strings.TrimSpace(scanner.Text())
			if raw == "" {
				continue
			}
			var record backupRecord
			if err := json.Unmarshal([]byte(raw), &record); err != nil {
				return fmt.Errorf("line %d: decode: %w", line, err)
			}
			if _, ok := allowed[record.Table]; !ok {
				continue
			}
			if err := tx.Table(record.Table).Create(record.Row).Error; err != nil {
				return fmt.Errorf("line %d: insert into %s: %w", line, record.Table, err)
			}
			counts[record.Table]++
		}
		return scanner.Err()
	})
}
