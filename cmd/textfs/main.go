// Textfs serves text documents over 9P. Each file named on the command
// line is loaded into a document; clients edit the documents through
// the files of the service and save them back with the save control
// message.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rjkroege/textcore/file"
	"github.com/rjkroege/textcore/fsys"
	"github.com/rjkroege/textcore/internal/config"
	"github.com/rjkroege/textcore/internal/watch"
)

var (
	configFile = flag.String("c", "", "read configuration from `file`")
	srvName    = flag.String("srv", "", "post the 9P service as `name`")
	loadMethod = flag.String("load", "", "load files with `method` auto, read or mmap")
	saveMethod = flag.String("save", "", "save files with `method` auto, atomic or inplace")
	noWatch    = flag.Bool("nowatch", false, "do not watch the files for changes")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: textfs [flags] [file ...]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

// configure reads the configuration file and applies the flags over it.
func configure() (config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return cfg, err
		}
	}
	if *srvName != "" {
		cfg.Service = *srvName
	}
	if *loadMethod != "" {
		cfg.Load = *loadMethod
	}
	if *saveMethod != "" {
		cfg.Save = *saveMethod
	}
	if *noWatch {
		cfg.Watch = false
	}
	return cfg, nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("textfs: ")
	flag.Usage = usage
	flag.Parse()

	cfg, err := configure()
	if err != nil {
		log.Fatalf("bad configuration: %v", err)
	}
	lm, err := cfg.LoadMethod()
	if err != nil {
		log.Fatalf("bad configuration: %v", err)
	}
	sm, err := cfg.SaveMethod()
	if err != nil {
		log.Fatalf("bad configuration: %v", err)
	}

	docs := &fsys.Docs{}
	for _, arg := range flag.Args() {
		// the watcher reports absolute names
		name, err := filepath.Abs(arg)
		if err != nil {
			log.Fatalf("can't find %s: %v", arg, err)
		}
		t, disk, err := file.Load(name, lm, cfg.TextOptions()...)
		if err != nil {
			log.Fatalf("can't load %s: %v", name, err)
		}
		d := docs.Add(t, disk)
		log.Printf("document %d: %s, %d bytes", d.ID, name, t.Size())
	}

	var w *watch.Watcher
	if cfg.Watch {
		if w, err = watch.New(0); err != nil {
			log.Fatalf("can't watch files: %v", err)
		}
		for _, d := range docs.All() {
			if err := w.Add(d.Name()); err != nil {
				log.Printf("can't watch %s: %v", d.Name(), err)
			}
		}
		go watchLoop(w, docs)
	}

	fs, errc, err := fsys.Post(cfg.Service, docs,
		fsys.WithSaveMethod(sm), fsys.WithTextOptions(cfg.TextOptions()...))
	if err != nil {
		log.Fatalf("can't post service: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		log.Printf("serving failed: %v", err)
	case s := <-sig:
		log.Printf("%v: shutting down", s)
	}

	fs.Close()
	if w != nil {
		w.Close()
	}
	if err := docs.Close(); err != nil {
		log.Fatalf("closing documents: %v", err)
	}
}

// watchLoop flags documents whose files change on disk.
func watchLoop(w *watch.Watcher, docs *fsys.Docs) {
	for {
		select {
		case name, ok := <-w.Changes():
			if !ok {
				return
			}
			if _, err := docs.Refresh(name); err != nil {
				log.Printf("can't check %s: %v", name, err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}
