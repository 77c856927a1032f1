package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/s0_data"
	"github.com/wonny/aegis-panel/pkg/config"
	"github.com/wonny/aegis-panel/pkg/database"
	"github.com/wonny/aegis-panel/pkg/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "원천 레코드를 DB에 적재",
	Long: `JSON 원천 레코드(단일 객체 또는 배열)를 지표 테이블에 적재합니다.
필요하면 스키마를 먼저 생성합니다.

Example:
  go run ./cmd/panel import --file testdata/watchlist.json`,
	RunE: runImport,
}

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 생성/갱신",
	RunE:  runMigrate,
}

var importFile string

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(migrateCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "원천 레코드 JSON 파일")
	importCmd.MarkFlagRequired("file")
}

// readRecords decodes one record or an array of records
func readRecords(path string) ([]*contracts.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeRecords(data)
}

func decodeRecords(data []byte) ([]*contracts.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty record file")
	}

	if trimmed[0] == '[' {
		var records []*contracts.RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}

	var record contracts.RawRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return []*contracts.RawRecord{&record}, nil
}

func openDB(ctx context.Context) (*database.DB, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, log, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, log, err := openDB(context.Background())
	if err != nil {
		return err
	}
	defer db.Close()

	log.WithField("files", database.SchemaFiles()).Info("Schema is up to date")
	fmt.Println("✅ Migration complete")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	records, err := readRecords(importFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, log, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := s0_data.NewRepository(db.Pool)
	start := time.Now()

	for i, raw := range records {
		if err := repo.Import(ctx, raw); err != nil {
			return fmt.Errorf("import record %d (%s): %w", i+1, raw.Code, err)
		}
		PrintProgress("Import", fmt.Sprintf("%s: %d periods, %d prices", s0_data.NormalizeCode(raw.Code), len(raw.Periods), len(raw.Prices)), i+1, len(records))
	}

	log.WithFields(map[string]interface{}{
		"records":  len(records),
		"duration": time.Since(start),
	}).Info("Import completed")
	PrintSuccess(fmt.Sprintf("Imported %d record(s) in %.2fs", len(records), time.Since(start).Seconds()))
	return nil
}
