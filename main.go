// Command ch8 executes CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/nf/ch8/host"
)

func main() {
	log.SetPrefix("ch8: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "run in the terminal instead of a window")
		scaleFlag = flag.Int("scale", 15, "window pixels per CHIP-8 pixel")
		speedFlag = flag.Int("speed", 10, "instructions executed per frame (60 frames per second)")
		watchFlag = flag.Bool("watch", false, "restart the program when the ROM file changes")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli] [-watch] [-scale n] [-speed n] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 || *speedFlag < 1 {
		flag.Usage()
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(flag.Arg(0), options{
		gui:   !*cliFlag,
		scale: *scaleFlag,
		speed: *speedFlag,
		watch: *watchFlag,
	})

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	gui   bool
	scale int
	speed int
	watch bool
}

type frontend interface {
	Run() error
}

func run(romFile string, opts options) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	r, err := host.NewRunner(rom, opts.speed)
	if err != nil {
		return fmt.Errorf("loading %s: %w", romFile, err)
	}
	r.KeepAlive = opts.watch

	if opts.watch {
		stop, err := watchROM(romFile, r)
		if err != nil {
			return err
		}
		defer stop()
	}

	var (
		exit = make(chan bool)
		done = make(chan error, 1)
	)
	go func() { done <- r.Run(exit) }()

	var fe frontend
	if opts.gui {
		fe = host.NewGUI(r, opts.scale)
	} else {
		fe = host.NewTerminal(r, filepath.Base(romFile))
	}
	feErr := fe.Run()

	close(exit)
	if err := <-done; err != nil {
		return err
	}
	return feErr
}
