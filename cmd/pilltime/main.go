// Command pilltime tracks medication reminders from the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/app"
	"github.com/Samantha1101854/pilltime-pro2/internal/config"
	"github.com/Samantha1101854/pilltime-pro2/internal/history"
	"github.com/Samantha1101854/pilltime-pro2/internal/logging"
	"github.com/Samantha1101854/pilltime-pro2/internal/model"
	"github.com/Samantha1101854/pilltime-pro2/internal/service"
)

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "pilltime")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pilltime")
}

func configPath() string { return filepath.Join(cfgDir(), "config.yaml") }

var errUsage = errors.New("usage")

// cli runs one subcommand against an opened app.
type cli struct {
	app  *app.App
	out  io.Writer
	json bool
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) println(s string) { fmt.Fprintln(c.out, s) }

func (c *cli) painter(ctx context.Context) painter {
	th, err := c.app.Tracker.Theme(ctx)
	if err != nil {
		th = model.ThemeLight
	}
	return newPainter(c.out, th)
}

func parseID(fs *flag.FlagSet, args []string) (uuid.UUID, error) {
	id := fs.String("id", "", "reminder id (uuid)")
	if err := fs.Parse(args); err != nil {
		return uuid.Nil, err
	}
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}
	if *id == "" {
		return uuid.Nil, fmt.Errorf("%w: need -id", errUsage)
	}
	v, err := uuid.FromString(*id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad id %q: %w", *id, err)
	}
	return v, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// dispatch executes cmd with its own flags.
func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	t := c.app.Tracker

	switch cmd {

	case "add":
		fs := newFlagSet("add")
		med := fs.String("med", "", "medication name")
		dose := fs.String("dose", "", "dosage amount")
		unit := fs.String("unit", "", "dosage unit, e.g. mg")
		at := fs.String("at", "", "time: RFC3339, 2006-01-02T15:04 or 15:04")
		repeat := fs.String("repeat", string(model.RecurrenceDaily), "once, daily or weekly")
		notes := fs.String("notes", "", "notes")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *med == "" || *at == "" {
			return fmt.Errorf("%w: need -med and -at", errUsage)
		}
		when, err := service.ParseWhen(*at, t.Now())
		if err != nil {
			return err
		}
		r, err := t.Create(ctx, model.NewReminder{
			Medication: *med,
			Dosage:     *dose,
			DosageUnit: *unit,
			Time:       when,
			Recurrence: model.Recurrence(*repeat),
			Notes:      *notes,
		})
		if err != nil {
			return err
		}
		if c.json {
			return c.printJSON(r)
		}
		c.println(r.ID.String())

	case "list", "today":
		var (
			rs  []model.Reminder
			err error
		)
		if cmd == "list" {
			rs, err = t.List(ctx)
		} else {
			rs, err = t.Today(ctx)
		}
		if err != nil {
			return err
		}
		if c.json {
			return c.printJSON(rs)
		}
		p := c.painter(ctx)
		if cmd == "today" {
			ov, err := t.Overview(ctx)
			if err != nil {
				return err
			}
			c.println(p.overview(ov))
		}
		c.println(p.reminders(rs, t.Now()))

	case "take":
		id, err := parseID(newFlagSet("take"), args)
		if err != nil {
			return err
		}
		e, err := t.MarkTaken(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("reminder %s not found", id)
		}
		if c.json {
			return c.printJSON(e)
		}
		c.println(fmt.Sprintf("Took %s.", e.Medication))

	case "snooze":
		id, err := parseID(newFlagSet("snooze"), args)
		if err != nil {
			return err
		}
		r, err := t.Snooze(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("reminder %s not found", id)
		}
		if c.json {
			return c.printJSON(r)
		}
		c.println(fmt.Sprintf("Snoozed %s until %s.", r.Medication, r.Time.In(t.Now().Location()).Format("15:04")))

	case "rm":
		id, err := parseID(newFlagSet("rm"), args)
		if err != nil {
			return err
		}
		ok, err := t.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("reminder %s not found", id)
		}
		c.println("ok")

	case "clear":
		fs := newFlagSet("clear")
		yes := fs.Bool("yes", false, "confirm")
		hist := fs.Bool("history", false, "clear history instead of reminders")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if !*yes {
			return fmt.Errorf("%w: pass -yes to confirm", errUsage)
		}
		if *hist {
			if err := t.ClearHistory(ctx); err != nil {
				return err
			}
		} else if err := t.ClearAll(ctx); err != nil {
			return err
		}
		c.println("ok")

	case "history":
		fs := newFlagSet("history")
		med := fs.String("med", "", "medication name")
		status := fs.String("status", "", "taken, late, missed or pending")
		from := fs.String("from", "", "earliest time")
		to := fs.String("to", "", "latest time")
		order := fs.String("sort", "", "newest, oldest, medication or delay")
		if err := fs.Parse(args); err != nil {
			return err
		}
		f := history.Filter{Medication: *med}
		if *status != "" {
			st, err := model.ParseDoseStatus(*status)
			if err != nil {
				return err
			}
			f.Status = st
		}
		now := t.Now()
		for _, b := range []struct {
			raw string
			dst *time.Time
		}{{*from, &f.From}, {*to, &f.To}} {
			if b.raw == "" {
				continue
			}
			v, err := service.ParseWhen(b.raw, now)
			if err != nil {
				return err
			}
			*b.dst = v
		}
		o, err := history.ParseOrder(*order)
		if err != nil {
			return err
		}
		all, err := t.History(ctx)
		if err != nil {
			return err
		}
		out := history.Query(all, f, o)
		if c.json {
			return c.printJSON(out)
		}
		c.println(c.painter(ctx).history(out, now.Location()))

	case "stats":
		ov, err := t.Overview(ctx)
		if err != nil {
			return err
		}
		if c.json {
			return c.printJSON(ov)
		}
		c.println(c.painter(ctx).overview(ov))

	case "summary", "insights", "chart":
		in, err := t.Insights(ctx)
		if err != nil {
			return err
		}
		if c.json {
			if cmd == "summary" {
				return c.printJSON(in.Medications)
			}
			return c.printJSON(in)
		}
		p := c.painter(ctx)
		switch cmd {
		case "summary":
			c.println(p.summaries(in.Medications, t.Now().Location()))
		case "insights":
			c.println(p.insights(in))
		default:
			c.println(p.chart(in))
		}

	case "export":
		fs := newFlagSet("export")
		outPath := fs.String("o", "", "write to file instead of stdout")
		if err := fs.Parse(args); err != nil {
			return err
		}
		doc, err := t.Export(ctx)
		if err != nil {
			return err
		}
		if *outPath == "" {
			return c.printJSON(doc)
		}
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*outPath, b, 0o600); err != nil {
			return err
		}
		c.println(*outPath)

	case "theme":
		th, err := t.Theme(ctx)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			next := model.Theme(args[0])
			if args[0] == "toggle" {
				next = th.Toggle()
			}
			if err := t.SetTheme(ctx, next); err != nil {
				return err
			}
			th = next
		}
		c.println("theme: " + th.String())

	case "tick":
		if _, err := t.DetectMissed(ctx); err != nil {
			return err
		}
		as := c.app.Scheduler.Tick(ctx)
		if c.json {
			return c.printJSON(as)
		}
		c.println(c.painter(ctx).alerts(as))

	case "run":
		return c.app.Scheduler.Run(ctx)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `pilltime - medication reminders
Usage:
  pilltime [-config file] [-json] <cmd> [args]

Commands:
  version
  add       -med <name> -at <time> [-dose N] [-unit mg] [-repeat once|daily|weekly] [-notes text]
  list                                          (all reminders)
  today                                         (dashboard and today's schedule)
  take      -id <uuid>
  snooze    -id <uuid>                          (+5 minutes)
  rm        -id <uuid>
  clear     -yes [-history]
  history   [-med name] [-status s] [-from t] [-to t] [-sort newest|oldest|medication|delay]
  stats
  summary                                       (per medication)
  insights
  chart                                         (weekday and monthly adherence)
  export    [-o file]
  theme     [light|dark|toggle]
  tick                                          (one alert pass)
  run                                           (alert loop until interrupted)
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads config, opens storage and dispatches the subcommand.
func main() {
	_ = godotenv.Load()

	cfgFile := flag.String("config", configPath(), "config file (YAML)")
	asJSON := flag.Bool("json", false, "print JSON")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	if cmd == "version" {
		fmt.Printf("pilltime %s (%s)\n", version, buildDate)
		return
	}

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fail(err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("open", zap.Error(err))
		fail(err)
	}

	c := &cli{app: a, out: os.Stdout, json: *asJSON}
	err = c.dispatch(ctx, cmd, flag.Args()[1:])
	_ = a.Close()
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		usage()
	}
	if err != nil {
		fail(err)
	}
}
