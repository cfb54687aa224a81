// Command cluster3d reconstructs 3D hits from the wire hits of one or more
// event files.
//
//	cluster3d -event evt.json -out result.json -db runs.db -plot-dir plots
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/banshee-data/cluster3d/internal/cluster3d"
	"github.com/banshee-data/cluster3d/internal/config"
	"github.com/banshee-data/cluster3d/internal/drift"
	"github.com/banshee-data/cluster3d/internal/eventio"
	"github.com/banshee-data/cluster3d/internal/monitoring"
	"github.com/banshee-data/cluster3d/internal/report"
	"github.com/banshee-data/cluster3d/internal/storage/sqlite"
	"github.com/banshee-data/cluster3d/internal/version"
)

type options struct {
	events     []string
	configPath string
	out        string
	dbPath     string
	plotDir    string
	htmlPath   string
	verbosity  int
	version    bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("cluster3d", flag.ContinueOnError)
	event := fs.String("event", "", "Event file (JSON) to reconstruct; further files may follow as arguments")
	configPath := fs.String("config", "", "Clusterer tuning config (JSON); defaults apply when empty")
	out := fs.String("out", "-", "Where to write the result JSON; '-' for stdout, a directory for several events")
	dbPath := fs.String("db", "", "SQLite database to record runs in")
	plotDir := fs.String("plot-dir", "", "Directory for PNG projections of the 3D hits")
	htmlPath := fs.String("html", "", "HTML file for an interactive view of the 3D hits")
	verbosity := fs.Int("v", int(monitoring.LevelLog), "Log verbosity: 0 errors, 1 summary, 2 per plane, 3 per hit")
	showVersion := fs.Bool("version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showVersion {
		return &options{version: true}, nil
	}

	o := &options{
		configPath: *configPath,
		out:        *out,
		dbPath:     *dbPath,
		plotDir:    *plotDir,
		htmlPath:   *htmlPath,
		verbosity:  *verbosity,
	}
	if *event != "" {
		o.events = append(o.events, *event)
	}
	o.events = append(o.events, fs.Args()...)
	if len(o.events) == 0 {
		return nil, fmt.Errorf("no event file given (use -event)")
	}
	if o.verbosity < int(monitoring.LevelError) || o.verbosity > int(monitoring.LevelVerbose) {
		return nil, fmt.Errorf("verbosity %d out of range 0-3", o.verbosity)
	}
	if o.htmlPath != "" && len(o.events) > 1 {
		return nil, fmt.Errorf("-html needs a single event")
	}
	return o, nil
}

func loadConfig(path string) (*config.ClusterConfig, error) {
	if path == "" {
		return config.EmptyClusterConfig(), nil
	}
	return config.LoadClusterConfig(path)
}

func eventName(path string, e *eventio.Event) string {
	if e.EventID != "" {
		return e.EventID
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func resultWriter(o *options, name string, stdout io.Writer) (io.Writer, func() error, error) {
	if o.out == "-" {
		return stdout, func() error { return nil }, nil
	}
	path := o.out
	if len(o.events) > 1 {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			return nil, nil, err
		}
		path = filepath.Join(o.out, name+".result.json")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	monitoring.SetLevel(monitoring.Level(o.verbosity))

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	params := cluster3d.ParamsFromConfig(cfg)
	model, err := drift.FromConfig(cfg)
	if err != nil {
		return err
	}
	clusterer, err := cluster3d.NewClusterer(params, model)
	if err != nil {
		return err
	}

	var db *sqlite.DB
	if o.dbPath != "" {
		db, err = sqlite.OpenAndMigrate(o.dbPath)
		if err != nil {
			return fmt.Errorf("open results database: %w", err)
		}
		defer db.Close()
	}

	for _, path := range o.events {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := eventio.LoadEvent(path)
		if err != nil {
			return err
		}
		name := eventName(path, e)
		monitoring.Printf("Event %s", name)

		wires, pmts := e.Selections()
		res, err := clusterer.Process(ctx, wires, pmts)
		if err != nil {
			return fmt.Errorf("event %s: %w", name, err)
		}

		w, closeFn, err := resultWriter(o, name, stdout)
		if err != nil {
			return fmt.Errorf("event %s: %w", name, err)
		}
		if err := eventio.WriteResult(w, name, res); err != nil {
			closeFn()
			return err
		}
		if err := closeFn(); err != nil {
			return err
		}

		if db != nil {
			r, err := sqlite.SaveResult(db.DB, name, cfg, res)
			if err != nil {
				return fmt.Errorf("event %s: %w", name, err)
			}
			monitoring.Printf("Recorded run %s", r.RunID)
		}
		if o.plotDir != "" {
			files, err := report.WriteProjections(o.plotDir, name, res)
			if err != nil {
				return fmt.Errorf("event %s: %w", name, err)
			}
			monitoring.Printf("Wrote %d plots to %s", len(files), o.plotDir)
		}
		if o.htmlPath != "" {
			if err := writeHTML(o.htmlPath, name, res); err != nil {
				return fmt.Errorf("event %s: %w", name, err)
			}
		}
	}
	return nil
}

func writeHTML(path, name string, res *cluster3d.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteHTML(f, name, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Printf("cluster3d: %v", err)
		os.Exit(2)
	}
	if o.version {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, o, os.Stdout)
	stop()
	if err != nil {
		log.Printf("cluster3d: %v", err)
		os.Exit(1)
	}
}
