package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"git.disy.net/goetz/pommel/patch"
)

const attenuate = 0.3

var (
	mix   *mixer
	insts instruments
	ts    triggers
)

func scanLines(lines chan []byte, errors chan error) {
	s := bufio.NewScanner(os.Stdin)
	for s.Scan() {
		// the scanner reuses its buffer
		line := append([]byte(nil), s.Bytes()...)
		fmt.Println(string(line))
		lines <- line
	}
	errors <- s.Err()
}

func processLines(done <-chan struct{}, errs chan<- error) {
	lines := make(chan []byte, 1)
	scannerErrs := make(chan error, 1)
	go scanLines(lines, scannerErrs)
	for {
		select {
		case line := <-lines:
			// maybe play sound
			t, ok := ts.firstMatch(line)
			if !ok {
				continue
			}
			synth, err := insts.makeVoice(t.Instrument)
			if err != nil {
				errs <- err
				continue
			}
			mix.start(synth, t)
		case <-done:
			return
		case <-scannerErrs:
			// stop on scanner error, ignore error
			return
		}
	}
}

// apply builds c and swaps it in. On error nothing changes.
func apply(c *patch.Config) error {
	built, err := c.Build()
	if err != nil {
		return err
	}
	if err := ts.set(c.Triggers); err != nil {
		return err
	}
	insts.set(built.Synths)
	mix.setBank(built.Bank)
	mix.setMaxVoices(c.MaxVoices)
	return nil
}

func main() {
	configFile := flag.String("config", "", "Path to config, created with defaults if not found.")
	backendName := flag.String("backend", "portaudio", "Output: portaudio, oto or wav.")
	outFile := flag.String("out", "out.wav", "File written by the wav backend.")
	seconds := flag.Float64("seconds", 10, "Length rendered by the wav backend.")
	flag.Parse()
	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		return
	}
	config, err := patch.ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("can't read config: %v because: %v", *configFile, err)
	}
	mix = newMixer(config.SampleRate, config.MaxVoices)
	// apply initial config
	if err := apply(config); err != nil {
		log.Fatalf("config error: %v", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	out, err := openBackend(*backendName, config.SampleRate, mix.render, *outFile, *seconds)
	if err != nil {
		log.Fatalf("can't open %s backend: %v", *backendName, err)
	}
	err = out.Start()
	if err != nil {
		log.Fatalf("can't start %s backend: %v", *backendName, err)
	}
	// ignore Close error
	defer out.Close()

	configs := make(chan *patch.Config)
	done := make(chan struct{})
	defer close(done)
	errors := make(chan error)
	if config.WatchConfig {
		err := patch.Watch(*configFile, configs, errors, done)
		if err != nil {
			log.Fatalf("can't start watcher: %v", err)
		}
	}

	// report errors to stderr
	go func() {
		for {
			select {
			case err := <-errors:
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			case <-done:
				return
			}
		}
	}()

	// scan lines, trigger sounds
	go processLines(done, errors)

	for {
		select {
		// handle config changes
		case c := <-configs:
			if err := apply(c); err != nil {
				errors <- err
				continue
			}
			fmt.Println("new conf")
		case <-out.Done():
			fmt.Println("finished")
			return
		// block until SIGINT | SIGTERM
		case <-signals:
			fmt.Printf("exiting, %d voices playing\n", mix.active())
			return
		}
	}
}
