// Command tbcpatch merges mod archives into game asset tables.
//
// Modes:
//
//	tbcpatch -mode patch   -config tbcpatch.yaml
//	tbcpatch -mode inspect -config tbcpatch.yaml -asset itemShopData.tsv
//	tbcpatch -mode watch   -config tbcpatch.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/cintagram/tbcpatch/assets"
	"github.com/cintagram/tbcpatch/config"
	"github.com/cintagram/tbcpatch/modfile"
	"github.com/cintagram/tbcpatch/pack"
	"github.com/cintagram/tbcpatch/pipeline"
	"github.com/cintagram/tbcpatch/schema"
	"github.com/cintagram/tbcpatch/tabular"
)

var (
	mode       string
	configPath string
	assetName  string
)

// mainCharaAnims is the fixed animation set of the castle character
// model, the composite asset the base game ships.
var mainCharaAnims = []string{
	"castleCustom_mainChara_actionL_open.maanim",
	"castleCustom_mainChara_actionR_open.maanim",
	"castleCustom_mainChara_happy.maanim",
	"castleCustom_mainChara_runL.maanim",
	"castleCustom_mainChara_runR.maanim",
	"castleCustom_mainChara_waitL.maanim",
	"castleCustom_mainChara_waitL_open.maanim",
	"castleCustom_mainChara_waitR.maanim",
	"castleCustom_mainChara_waitR_open.maanim",
	"castleCustom_mainChara_walkL.maanim",
	"castleCustom_mainChara_walkL_open.maanim",
	"castleCustom_mainChara_walkR.maanim",
	"castleCustom_mainChara_walkR_open.maanim",
}

func main() {
	flagSet()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := newLogger(cfg.Logging)

	switch mode {
	case "patch":
		err = runPatch(cfg, log)
	case "inspect":
		err = runInspect(cfg)
	case "watch":
		err = runWatch(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "mode must be 'patch', 'inspect' or 'watch', got %q\n", mode)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func flagSet() {
	flag.StringVar(&mode, "mode", "patch", "Either 'patch', 'inspect' or 'watch'")
	flag.StringVar(&configPath, "config", "tbcpatch.yaml", "Path of the run configuration file")
	flag.StringVar(&assetName, "asset", "", "Asset table to dump in inspect mode, e.g. 'itemShopData.tsv'")
	flag.Parse()
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// gameAssets returns the asset types a patch run covers.
func gameAssets() []pipeline.Asset {
	return []pipeline.Asset{
		assets.NewItemShop(),
		assets.NewUnitModel("castleCustom_mainChara_001", mainCharaAnims...),
	}
}

// --------------------------------------------------------------------

func runPatch(cfg *config.Config, log zerolog.Logger) error {
	src, closeSrc, err := openStore(cfg.Game.Dir)
	if err != nil {
		return err
	}
	defer closeSrc()

	mods, err := loadMods(cfg, log)
	if err != nil {
		return err
	}

	archiveOut := strings.HasSuffix(cfg.Game.Out, ".pack")
	var dst pack.Store
	if archiveOut {
		arch, ok := src.(*pack.Archive)
		if !ok {
			return errors.New("a .pack output needs a .pack input; use a directory output with directory game data")
		}
		dst = arch
	} else {
		dst = pack.NewDir(cfg.Game.Out)
	}

	rep := pipeline.New(log, gameAssets()...).Run(src, dst, mods)

	if archiveOut && rep.OK() {
		if err := writeArchive(cfg, src.(*pack.Archive)); err != nil {
			return err
		}
	}
	if !rep.OK() {
		return fmt.Errorf("%d asset type(s) failed", len(rep.Errors))
	}
	return nil
}

func writeArchive(cfg *config.Config, arch *pack.Archive) error {
	f, err := os.Create(cfg.Game.Out)
	if err != nil {
		return err
	}
	o := &pack.WriterOptions{Compression: compressionOf(cfg.Pack.Compression)}
	if err := arch.WriteTo(f, o); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func compressionOf(s string) pack.Compression {
	switch s {
	case "zstd":
		return pack.ZstdCompression
	case "none":
		return pack.NoCompression
	}
	return pack.SnappyCompression
}

// openStore opens game data as a store: a directory of tables or a
// single .pack archive.
func openStore(path string) (pack.Store, func() error, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if fi.IsDir() {
		return pack.NewDir(path), func() error { return nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	arch, err := pack.OpenArchive(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return arch, f.Close, nil
}

// loadMods opens the configured mod archives. With an explicit order the
// listed archives are loaded in that order; otherwise every .zip in the
// mods directory is loaded in name order.
func loadMods(cfg *config.Config, log zerolog.Logger) ([]*modfile.Mod, error) {
	names := cfg.Mods.Order
	if len(names) == 0 {
		entries, err := os.ReadDir(cfg.Mods.Dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".zip") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
	}

	mods := make([]*modfile.Mod, 0, len(names))
	for _, name := range names {
		mod, err := modfile.Open(filepath.Join(cfg.Mods.Dir, name))
		if err != nil {
			return nil, err
		}
		log.Info().Str("mod", mod.Meta.Name).Str("file", name).Str("id", mod.Meta.ID).Msg("mod loaded")
		mods = append(mods, mod)
	}
	return mods, nil
}

// --------------------------------------------------------------------

func runInspect(cfg *config.Config) error {
	if assetName == "" {
		return errors.New("inspect needs -asset")
	}

	src, closeSrc, err := openStore(cfg.Game.Dir)
	if err != nil {
		return err
	}
	defer closeSrc()

	text, err := src.ReadTable(assetName)
	if err != nil {
		return err
	}

	switch {
	case strings.HasSuffix(assetName, ".imgcut"):
		return dumpRecord(assets.TextureSchema, text)
	case strings.HasSuffix(assetName, ".mamodel"):
		return dumpRecord(assets.RigSchema, text)
	case strings.HasSuffix(assetName, ".maanim"):
		return dumpRecord(assets.AnimSchema, text)
	case assetName == assets.ItemShopFile:
		return dumpShop(text)
	}
	return fmt.Errorf("no schema known for %q", assetName)
}

func dumpRecord[R any](s *schema.Schema[R], text string) error {
	rec, _, err := schema.Read(s, tabular.Decode(text, ','), 0)
	if err != nil {
		return err
	}
	spew.Dump(rec)
	return nil
}

func dumpShop(text string) error {
	t := tabular.Decode(text, '\t')
	var items []*assets.ShopItem
	for row := 1; row < t.NumRows(); row++ {
		if t.RowLen(row) < 7 {
			continue
		}
		rec, _, err := schema.Read(assets.ShopItemSchema, t, row)
		if err != nil {
			return err
		}
		items = append(items, rec)
	}
	spew.Dump(items)
	return nil
}

// --------------------------------------------------------------------

// runWatch re-runs the patch whenever the mods directory changes. Edits
// tend to arrive in bursts (editors write temp files, archives copy in
// chunks), so runs are debounced.
func runWatch(cfg *config.Config, log zerolog.Logger) error {
	if err := runPatch(cfg, log); err != nil {
		log.Error().Err(err).Msg("initial patch failed, watching anyway")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.Mods.Dir); err != nil {
		return err
	}
	log.Info().Str("dir", cfg.Mods.Dir).Msg("watching for mod changes")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var pending *time.Timer
	runs := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(500*time.Millisecond, func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			})
		case <-runs:
			if err := runPatch(cfg, log); err != nil {
				log.Error().Err(err).Msg("patch failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("watch error")
		case <-quit:
			log.Info().Msg("stopping")
			return nil
		}
	}
}
