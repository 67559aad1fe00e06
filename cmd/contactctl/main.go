package main

import (
	"fmt"
	"os"

	"github.com/contactbook/internal/config"
	"github.com/contactbook/internal/db"
	"github.com/contactbook/internal/locale"
	"github.com/contactbook/internal/service"
	"github.com/contactbook/internal/sheet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type options struct {
	driver   string
	dbPath   string
	dsn      string
	language string

	gdb *gorm.DB
}

func main() {
	if err := newRootCommand(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(cfg config.AppConfig) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "Import and export the contact book from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.driver, "driver", cfg.DatabaseDriver, "database driver (sqlite or mysql)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", cfg.DatabasePath, "sqlite database path")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", cfg.DatabaseDSN, "mysql DSN")
	root.PersistentFlags().StringVar(&opts.language, "lang", cfg.SheetLanguage, "sheet language (en or zh)")

	root.AddCommand(newImportCommand(opts), newExportCommand(opts))
	return root
}

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an .xlsx or .xls workbook into the contact book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := args[0]
			if !sheet.SupportedExtension(path) {
				return fmt.Errorf("unsupported file %s: only .xlsx and .xls are accepted", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			transfer, err := opts.transfer()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := opts.close(); err == nil {
					err = cerr
				}
			}()

			result, err := transfer.Import(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "done: processed %d of %d rows (skipped %d, failed %d)\n",
				result.ProcessedCount, result.TotalRowCount, result.SkippedCount, result.FailedCount)
			for _, failure := range result.Failures() {
				fmt.Fprintf(out, "  row %d: %s\n", failure.Row, failure.Reason())
			}
			return nil
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every contact to an .xlsx workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			transfer, err := opts.transfer()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := opts.close(); err == nil {
					err = cerr
				}
			}()

			path := transfer.Format().FileName
			if len(args) == 1 {
				path = args[0]
			}

			data, err := transfer.Export(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "done: wrote %s\n", path)
			return nil
		},
	}
}

func (o *options) open() (*gorm.DB, error) {
	gdb, err := db.Open(db.Options{Driver: o.driver, Path: o.dbPath, DSN: o.dsn, Silent: true})
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	o.gdb = gdb
	return gdb, nil
}

// close 释放 open 建立的连接池
func (o *options) close() error {
	if o.gdb == nil {
		return nil
	}
	sqlDB, err := o.gdb.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func (o *options) transfer() (*service.TransferService, error) {
	gdb, err := o.open()
	if err != nil {
		return nil, err
	}
	language := locale.NormalizeLanguage(o.language)
	if language == "" {
		language = locale.LanguageEnglish
	}
	return service.NewTransferService(gdb, sheet.FormatFor(language), zap.NewNop()), nil
}
