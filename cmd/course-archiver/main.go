package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/archive"
	"github.com/alanbriolat/course-archiver/async"
	"github.com/alanbriolat/course-archiver/courses"
	"github.com/alanbriolat/course-archiver/download"
	"github.com/alanbriolat/course-archiver/downloader/direct"
	"github.com/alanbriolat/course-archiver/downloader/youtube"
	"github.com/alanbriolat/course-archiver/downloader/ytdlp"
	"github.com/alanbriolat/course-archiver/internal/journal"
)

func main() {
	level := zap.NewAtomicLevelAt(zap.WarnLevel)
	config := zap.NewDevelopmentConfig()
	config.Level = level
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = course_archiver.WithLogger(ctx, logger)

	app := newApp(level)
	result := async.Run(func() error { return app.RunContext(ctx, os.Args) })

	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		err = <-result
	}
	if err != nil {
		logger.Fatal(err.Error())
	}
}

func newApp(level zap.AtomicLevel) *cli.App {
	return &cli.App{
		Name:      "course-archiver",
		Usage:     "download the videos of an archived course site",
		ArgsUsage: "COURSE STATIC_ROOT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "types",
				Usage: "comma separated video `TYPES` to download (default: all)",
			},
			&cli.StringFlag{
				Name:    "downloader",
				Aliases: []string{"d"},
				Value:   course_archiver.MechanismYtDlp,
				Usage:   "transfer `MECHANISM`: yt-dlp, youtube, 300k or direct",
			},
			&cli.StringFlag{
				Name:  "videos-root",
				Usage: "create the video tree under `DIR` (default: parent of STATIC_ROOT)",
			},
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"COURSE_ARCHIVER_CONFIG"},
				Usage:   "load settings from TOML `FILE`",
			},
			&cli.StringFlag{
				Name:    "journal",
				EnvVars: []string{"COURSE_ARCHIVER_JOURNAL"},
				Usage:   "record runs and transfer outcomes in `FILE`",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every step",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				level.SetLevel(zap.DebugLevel)
			}
			return nil
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:  "courses",
				Usage: "list the known courses",
				Action: func(c *cli.Context) error {
					catalog, err := courses.NewCatalog()
					if err != nil {
						return err
					}
					return listCourses(c.App.Writer, catalog)
				},
			},
		},
		HideHelpCommand: true,
	}
}

func listCourses(w io.Writer, catalog *course_archiver.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "COURSE\tMECHANISM\tTYPES\tTITLE")
	for _, id := range catalog.List() {
		course, err := catalog.Get(id)
		if err != nil {
			return err
		}
		for _, m := range course.Mechanisms() {
			strategy, err := course.StrategyFor(m)
			if err != nil {
				return err
			}
			types := strings.Join(strategy.Resolution.VideoTypes(), ",")
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, m, types, course.Title)
		}
	}
	return tw.Flush()
}

func splitTypes(s string) []string {
	var types []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// videosRoot picks the flag, then the config file, then the directory containing the static root.
func videosRoot(flag string, cfg course_archiver.Config, staticRoot string) (string, error) {
	switch {
	case flag != "":
		return flag, nil
	case cfg.VideosRoot != "":
		return cfg.VideosRoot, nil
	}
	abs, err := filepath.Abs(staticRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", course_archiver.ErrPrecondition, err)
	}
	return filepath.Dir(abs), nil
}

func newTransfer(mechanism string, cfg course_archiver.Config, verbose bool) (download.Transfer, error) {
	switch mechanism {
	case course_archiver.MechanismYtDlp:
		return ytdlp.New(cfg.YtDlp, nil), nil
	case course_archiver.MechanismYouTube:
		return youtube.New(verbose), nil
	case course_archiver.Mechanism300k, course_archiver.MechanismDirect:
		return direct.New(cfg.Direct, direct.WithProgress(verbose)), nil
	default:
		return nil, fmt.Errorf("%w: %q", course_archiver.ErrUnsupportedMechanism, mechanism)
	}
}

func run(c *cli.Context) error {
	ctx := c.Context
	logger := course_archiver.Logger(ctx).Sugar()
	if c.NArg() != 2 {
		return fmt.Errorf("%w: expected COURSE and STATIC_ROOT arguments", course_archiver.ErrPrecondition)
	}
	courseID, staticRoot := c.Args().Get(0), c.Args().Get(1)
	verbose := c.Bool("verbose")

	cfg, err := course_archiver.LoadConfig(c.String("config"), false)
	if err != nil {
		return err
	}
	if c.IsSet("journal") {
		cfg.Journal = c.String("journal")
	}
	root, err := videosRoot(c.String("videos-root"), cfg, staticRoot)
	if err != nil {
		return err
	}

	catalog, err := courses.NewCatalog()
	if err != nil {
		return err
	}
	mechanism := c.String("downloader")
	course, strategy, types, err := catalog.Select(courseID, mechanism, splitTypes(c.String("types")))
	if err != nil {
		return err
	}
	transfer, err := newTransfer(mechanism, cfg, verbose)
	if err != nil {
		return err
	}

	var opts []download.Option
	var j *journal.Journal
	if cfg.Journal != "" {
		if j, err = journal.Open(cfg.Journal); err != nil {
			return err
		}
		defer j.Close()
		if err := j.StartRun(course.ID, mechanism, types); err != nil {
			return err
		}
		opts = append(opts, download.WithRecorder(j))
	}

	logger.Infof("resolving %s (%s) with %s strategy %q", course.ID, course.Title, strategy.Resolution.Kind(), strategy.Name)
	collection, err := strategy.Resolution.Resolve(ctx, staticRoot, types)
	if err != nil {
		return err
	}
	if j != nil {
		changes, err := j.SaveCatalog(course.ID, mechanism, collection)
		if err != nil {
			return err
		}
		for _, change := range changes {
			logger.Infof("catalog %s: %s: %v -> %v", change.Type, strings.Join(change.Path, "."), change.From, change.To)
		}
	}

	summary, err := archive.Archive(ctx, collection, root, download.New(transfer, opts...))
	if summary.Failed > 0 {
		logger.Warnf("%d of %d transfers failed", summary.Failed, summary.Total())
	}
	return err
}
