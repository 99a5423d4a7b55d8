package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/goopsie/xfileTools/assets"
	"github.com/goopsie/xfileTools/config"
	"github.com/goopsie/xfileTools/export"
	"github.com/goopsie/xfileTools/logging"
	"github.com/goopsie/xfileTools/xfile"
)

var (
	Version = "development"

	cfg config.Config
)

func main() {
	app := &cli.App{
		Name:    "xfileTools",
		Usage:   "Inspect, extract and rebuild XFile zones",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "TOML config file", TakesFile: true, EnvVars: []string{"XFILE_CONFIG"}},
			&cli.StringFlag{Name: "platform", Usage: "Zone platform: pc, macos, xbox360 or ps3"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn or error"},
			&cli.IntFlag{Name: "workers", Usage: "Zones decoded at once"},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the assets of each zone",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "payload", Usage: "Inputs are payload dumps written by the payload command"},
				},
				Action: listZones,
			},
			{
				Name:      "strings",
				Usage:     "Print the script string table of a zone",
				ArgsUsage: "FILE",
				Action:    printStrings,
			},
			{
				Name:      "extract",
				Usage:     "Write each asset of each zone as a document",
				ArgsUsage: "FILE...",
				Flags:     outputFlags(),
				Action:    extractZones,
			},
			{
				Name:      "build",
				Usage:     "Rebuild a zone from a directory written by extract",
				ArgsUsage: "DIR",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "Zone path"},
				},
				Action: buildZone,
			},
			{
				Name:      "payload",
				Usage:     "Dump the inflated payload of a zone, ZSTD compressed",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "Dump path"},
				},
				Action: dumpPayload,
			},
			{
				Name:      "watch",
				Usage:     "Extract zones again whenever they change",
				ArgsUsage: "FILE...",
				Flags:     outputFlags(),
				Action:    watchZones,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		logging.Fatal("xfileTools failed", "err", err)
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
		&cli.StringFlag{Name: "format", Usage: "Document format: json or yaml"},
	}
}

func setup(c *cli.Context) error {
	var err error
	if cfg, err = config.Load(c.String("config")); err != nil {
		return err
	}
	if c.IsSet("platform") {
		if cfg.Platform, err = xfile.ParsePlatform(c.String("platform")); err != nil {
			return err
		}
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.LogLevel == "debug" {
		logging.EnableCaller()
	}
	return nil
}

func applyOutputFlags(c *cli.Context) error {
	if c.IsSet("output") {
		cfg.OutputDir = c.String("output")
	}
	if c.IsSet("format") {
		f, err := export.ParseFormat(c.String("format"))
		if err != nil {
			return err
		}
		cfg.Format = f
	}
	return nil
}

func openZone(path string, fromPayload bool) (*xfile.Decoder, error) {
	if !fromPayload {
		return xfile.Open(path, cfg.DecoderOptions()...)
	}
	payload, err := export.ReadPayload(path)
	if err != nil {
		return nil, err
	}
	d, err := xfile.DecodePayload(payload, cfg.DecoderOptions()...)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return d, nil
}

type zoneListing struct {
	path   string
	assets []assets.Asset
	stats  xfile.Stats
	size   int64
}

func listZones(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("list: no files given")
	}

	listings := make([]*zoneListing, len(paths))
	g, _ := errgroup.WithContext(c.Context)
	g.SetLimit(cfg.Workers)
	for i, path := range paths {
		g.Go(func() error {
			d, err := openZone(path, c.Bool("payload"))
			if err != nil {
				return err
			}
			list, err := d.All()
			listings[i] = &zoneListing{path: path, assets: list, stats: d.Stats(), size: d.Pos()}
			return err
		})
	}
	err := g.Wait()

	for _, l := range listings {
		if l == nil {
			continue
		}
		fmt.Printf("%s: %d/%d assets, %d with payload, %s decoded\n",
			l.path, l.stats.Deserialized, l.stats.Total, l.stats.NonNull, humanize.Bytes(uint64(l.size)))
		for _, a := range l.assets {
			if a.Header == nil {
				fmt.Printf("  %-12s (empty)\n", a.Type)
				continue
			}
			fmt.Printf("  %-12s %s\n", a.Type, a.Name())
		}
	}
	return err
}

func printStrings(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("strings: want exactly one file")
	}
	d, err := openZone(c.Args().First(), false)
	if err != nil {
		return err
	}
	for i, s := range d.ScriptStrings() {
		fmt.Printf("%5d  %s\n", i, s)
	}
	return nil
}

func dumpPayload(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("payload: want exactly one file")
	}
	path := c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	payload, err := xfile.Inflate(data, cfg.DecoderOptions()...)
	if err != nil {
		return errors.Wrapf(err, "inflate %s", path)
	}
	out := c.String("output")
	if err := export.WritePayload(out, payload, cfg.ZstdLevel); err != nil {
		return err
	}
	logging.Info("wrote payload dump", "zone", path, "path", out, "inflated", humanize.Bytes(uint64(len(payload))))
	return nil
}

func extractZones(c *cli.Context) error {
	if err := applyOutputFlags(c); err != nil {
		return err
	}
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return errors.New("extract: no files given")
	}

	g, _ := errgroup.WithContext(c.Context)
	g.SetLimit(cfg.Workers)
	for _, path := range paths {
		g.Go(func() error { return extractZone(path) })
	}
	return g.Wait()
}

func zoneName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// extractZone writes every asset of one zone under <output>/<zone>. Assets
// decoded before a failure are still written, and so is the manifest.
func extractZone(path string) error {
	d, err := openZone(path, false)
	if err != nil {
		return err
	}
	zone := zoneName(path)
	e := export.New(filepath.Join(cfg.OutputDir, zone), zone, cfg.Format)

	list, decodeErr := d.All()
	failed := 0
	for _, a := range list {
		if err := e.Export(a); err != nil {
			logging.Error("export failed", "zone", zone, "type", a.Type, "name", a.Name(), "err", err)
			failed++
		}
	}
	if err := e.Close(); err != nil {
		return err
	}
	stats := d.Stats()
	logging.Info("extracted zone", "zone", zone, "files", len(e.Manifest().Files), "assets", stats.NonNull, "total", stats.Total)
	if decodeErr != nil {
		return decodeErr
	}
	if failed > 0 {
		return errors.Errorf("%s: %d assets could not be exported", zone, failed)
	}
	return nil
}

func buildZone(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("build: want exactly one directory")
	}
	return rebuildZone(c.Args().First(), c.String("output"))
}

// rebuildZone encodes the documents under dir into a zone for the configured
// platform.
func rebuildZone(dir, out string) error {
	m, list, err := export.Import(dir)
	if err != nil {
		return errors.Wrapf(err, "import %s", dir)
	}
	data, err := xfile.Encode(cfg.Platform, list)
	if err != nil {
		return errors.Wrapf(err, "encode %s", m.Zone)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}
	logging.Info("built zone", "zone", m.Zone, "path", out, "assets", len(list), "size", humanize.Bytes(uint64(len(data))))
	return nil
}
