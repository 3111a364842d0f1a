package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/gigurra/groovebox/audio"
	"github.com/gigurra/groovebox/cmd/common"
	"github.com/gigurra/groovebox/library"
	"github.com/gigurra/groovebox/player"
	"github.com/gigurra/groovebox/remote"
	"github.com/gigurra/groovebox/ui"
)

type Params struct {
	Path     string `pos:"true" optional:"true" help:"Music directory or single audio file." default:"."`
	Shuffle  bool   `short:"s" help:"Start with shuffle enabled." default:"false"`
	Port     int    `short:"p" help:"Port for the web remote." default:"8088"`
	NoRemote bool   `help:"Disable the web remote." default:"false"`
	NoCache  bool   `help:"Ignore the library scan cache." default:"false"`
}

func main() {
	boa.CmdT[Params]{
		Use:         "groovebox",
		Short:       "Terminal music player with spectrum visualizer and web remote",
		Version:     appVersion(),
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := run(params); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "groovebox: %v\n", err)
				os.Exit(1)
			}
		},
	}.Run()
}

func run(params *Params) error {
	// The terminal belongs to the TUI, so logs go to a file.
	closeLog := redirectLogs()
	defer closeLog()

	absPath, err := filepath.Abs(params.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", params.Path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", absPath, err)
	}

	var tracks []library.Track
	var changes <-chan struct{}
	var stopWatch func()
	rescan := func() []library.Track { return nil }

	if info.IsDir() {
		cache := libraryCache(params.NoCache)
		tracks, err = library.Scan(absPath, cache)
		if err != nil {
			return err
		}
		rescan = func() []library.Track {
			fresh, err := library.Scan(absPath, cache)
			if err != nil {
				slog.Warn("rescan failed", "error", err)
				return nil
			}
			return fresh
		}
		changes, stopWatch, err = library.Watch(absPath)
		if err != nil {
			slog.Warn("library watch unavailable", "error", err)
		} else {
			defer stopWatch()
		}
	} else {
		tracks, err = library.ScanFile(absPath)
		if err != nil {
			return err
		}
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no playable tracks under %s", absPath)
	}

	engine := audio.NewEngine(audio.NewSpeakerOutput())
	go engine.Run()
	defer engine.Close()

	p := player.New(tracks, engine.Send, engine.Events(), engine.Chunks())
	if params.Shuffle {
		p.ToggleShuffle()
	}

	if !params.NoRemote {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		server := remote.NewServer(p, params.Port)
		go func() {
			if err := server.Run(ctx); err != nil {
				slog.Error("remote server failed", "error", err)
			}
		}()
	}

	model := ui.NewModel(p, changes)
	model.SetRescan(func() {
		if fresh := rescan(); fresh != nil {
			p.SetTracks(fresh)
		}
	})
	return ui.Run(model)
}

func libraryCache(disabled bool) library.CacheStore {
	if disabled {
		return nil
	}
	path, err := library.DefaultCachePath()
	if err != nil {
		slog.Warn("library cache unavailable", "error", err)
		return nil
	}
	return library.NewFileCache(path)
}

// redirectLogs points slog at a file under the cache dir and returns a
// closer. Falls back to discarding logs when the file can't be opened.
func redirectLogs() func() {
	dir := common.CacheDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "groovebox.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() {}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	return func() { _ = f.Close() }
}

func appVersion() string {
	bi, hasBuildInfo := debug.ReadBuildInfo()
	if !hasBuildInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
