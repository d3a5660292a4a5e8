// Command tutor is a terminal scheduler and bookkeeper for private tutors.
//
// Without flags it starts the interactive UI. The one-shot flags export or
// import a backup, clear all data, or write a calendar feed or a statistics
// workbook, then exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/tutor-scheduler/internal/app"
	"github.com/nhle/tutor-scheduler/internal/logger"
	"github.com/nhle/tutor-scheduler/internal/model"
	"github.com/nhle/tutor-scheduler/internal/stats"
	"github.com/nhle/tutor-scheduler/internal/store"
)

type options struct {
	configPath  string
	writeConfig bool
	exportPath  string
	importPath  string
	reset       bool
	icsPath     string
	xlsxPath    string
	period      string
}

func (o options) oneShot() bool {
	return o.exportPath != "" || o.importPath != "" || o.reset || o.icsPath != "" || o.xlsxPath != ""
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to config.yaml")
	flag.BoolVar(&opts.writeConfig, "write-config", false, "write the effective configuration to the -config path and exit")
	flag.StringVar(&opts.exportPath, "export", "", "write a JSON backup to `file`")
	flag.StringVar(&opts.importPath, "import", "", "replace all data with the JSON backup in `file`")
	flag.BoolVar(&opts.reset, "reset", false, "delete all students, lessons and settings")
	flag.StringVar(&opts.icsPath, "ics", "", "write all lessons as an iCalendar feed to `file`")
	flag.StringVar(&opts.xlsxPath, "xlsx", "", "write a statistics workbook to `file`")
	flag.StringVar(&opts.period, "period", string(stats.PresetMonth), "report period: week, month, quarter or year")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "tutor: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.writeConfig {
		if err := model.SaveConfig(opts.configPath, cfg); err != nil {
			return err
		}
		fmt.Println(opts.configPath)
		return nil
	}

	// One-shot runs log to the terminal; the UI keeps it clean.
	logCfg := cfg.Log
	if opts.oneShot() {
		logCfg.File = ""
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dbDir, err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	settings, err := s.InitializeSettings(ctx)
	if err != nil {
		return err
	}

	if opts.oneShot() {
		return runOneShot(ctx, opts, app.NewFiles(s, cfg, log), s, settings)
	}

	log.Info("starting ui", zap.String("database", cfg.Database.Path))
	p := tea.NewProgram(app.New(s, settings, cfg, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// runOneShot performs the requested flags in a fixed order: import or
// reset first, then the exports, so "-import a.json -xlsx r.xlsx" reports
// on the imported data.
func runOneShot(ctx context.Context, opts options, files *app.Files, s store.Store, settings *model.Settings) error {
	if opts.importPath != "" && opts.reset {
		return fmt.Errorf("-import and -reset cannot be combined")
	}

	preset, err := stats.ParsePreset(opts.period)
	if err != nil {
		return err
	}

	if opts.reset {
		if err := files.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("Все данные удалены")
	}
	if opts.importPath != "" {
		res, err := files.ImportBackup(ctx, opts.importPath)
		if err != nil {
			return err
		}
		fmt.Println(res.Message())
	}
	if opts.reset || opts.importPath != "" {
		if settings, err = s.InitializeSettings(ctx); err != nil {
			return err
		}
	}

	if opts.exportPath != "" {
		path, res, err := files.ExportBackup(ctx, opts.exportPath)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d students, %d lessons\n", path, res.Students, res.Lessons)
	}
	if opts.icsPath != "" {
		path, n, err := files.ExportCalendar(ctx, opts.icsPath, settings)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d events\n", path, n)
	}
	if opts.xlsxPath != "" {
		path, err := files.ExportReport(ctx, opts.xlsxPath, preset, settings)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s report\n", path, preset)
	}
	return nil
}
