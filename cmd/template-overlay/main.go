package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	flag "github.com/spf13/pflag"

	"github.com/ytget/template-overlay/internal/config"
	"github.com/ytget/template-overlay/internal/platform"
	"github.com/ytget/template-overlay/internal/store"
	"github.com/ytget/template-overlay/internal/thumbnail"
	"github.com/ytget/template-overlay/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.template-overlay"
	AppName = "Template Overlay"

	WindowWidth  = 460
	WindowHeight = 640
)

// options are command line overrides of stored preferences
type options struct {
	manifest    string
	interval    time.Duration
	thumbSize   int
	parallel    int
	logFile     string
	openOnStart bool
	showVersion bool
}

func parseFlags() (*options, *flag.FlagSet) {
	opts := &options{}
	fs := flag.NewFlagSet(AppName, flag.ExitOnError)
	fs.StringVarP(&opts.manifest, "manifest", "m", "", "template manifest file")
	fs.DurationVarP(&opts.interval, "interval", "i", config.DefaultSyncInterval, "store polling interval while the panel is open")
	fs.IntVar(&opts.thumbSize, "thumb-size", config.DefaultThumbnailSize, "preview edge in pixels")
	fs.IntVar(&opts.parallel, "parallel", config.DefaultPreloadParallel, "previews derived at once")
	fs.StringVar(&opts.logFile, "log-file", "", "log file path, \"-\" for stderr only")
	fs.BoolVar(&opts.openOnStart, "open", config.DefaultOpenOnStart, "show the template panel on start")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "print version and exit")
	_ = fs.Parse(os.Args[1:])
	return opts, fs
}

// applyFlags writes explicitly set flags into preferences
func applyFlags(opts *options, fs *flag.FlagSet, settings *config.Settings) {
	if fs.Changed("manifest") {
		settings.SetManifestPath(opts.manifest)
	}
	if fs.Changed("interval") {
		settings.SetSyncInterval(opts.interval)
	}
	if fs.Changed("thumb-size") {
		settings.SetThumbnailSize(opts.thumbSize)
	}
	if fs.Changed("parallel") {
		settings.SetPreloadParallel(opts.parallel)
	}
	if fs.Changed("log-file") {
		if opts.logFile == "-" {
			opts.logFile = ""
		}
		settings.SetLogFile(opts.logFile)
	}
	if fs.Changed("open") {
		settings.SetOpenOnStart(opts.openOnStart)
	}
}

func main() {
	opts, fs := parseFlags()
	if opts.showVersion {
		fmt.Printf("%s v%s\n", AppName, version)
		return
	}

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	settings := config.NewSettings(myApp)
	applyFlags(opts, fs, settings)

	logCloser, err := platform.SetupLogging(settings.GetLogFile())
	if err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	} else {
		defer logCloser.Close()
	}
	log.Printf("%s v%s starting...", AppName, version)

	manifestPath := settings.GetManifestPath()
	st, err := store.Open(manifestPath)
	if err != nil {
		log.Fatalf("Failed to open template manifest %s: %v", manifestPath, err)
	}

	decoder := thumbnail.NewFileDecoder()
	cache := thumbnail.NewCache(decoder, settings.GetThumbnailSize())
	cache.SetMaxParallel(settings.GetPreloadParallel())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	root := ui.NewRootUI(myWindow, settings, st, cache, decoder)
	myWindow.SetOnClosed(root.Shutdown)

	// External manifest edits show up right away instead of on the next tick
	watcher, err := store.NewWatcher(st, manifestPath)
	if err != nil {
		log.Printf("Warning: manifest watching disabled: %v", err)
	} else {
		watcher.SetReloadCallback(func() {
			if _, err := root.Controller().Refresh(); err != nil {
				log.Printf("Error refreshing after manifest reload: %v", err)
			}
		})
		if err := watcher.Start(); err != nil {
			log.Printf("Warning: manifest watching disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	if settings.GetOpenOnStart() {
		root.OpenPanel()
	}

	myWindow.ShowAndRun()
}
