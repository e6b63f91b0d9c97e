package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"arcsend/internal/client"
	"arcsend/internal/config"
	"arcsend/internal/watcher"
	"arcsend/pkg/logger"
)

func main() {
	cfg := config.New()

	serverAddr := flag.String("s", cfg.ServerAddr(), "receiver address as host:port")
	watchDir := flag.String("w", "", "watch a directory and send every file dropped into it")
	logFile := flag.String("log", cfg.LogFile(), "log file path")
	flag.Parse()

	logger.Init(*logFile)
	c := client.New(*serverAddr)

	if *watchDir != "" {
		watchAndSend(c, *watchDir)
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: arcsend [-s host:port] file [file ...]")
		fmt.Fprintln(os.Stderr, "       arcsend [-s host:port] -w dir")
		os.Exit(2)
	}

	ack, err := c.Send(files)
	if err != nil {
		logger.Log.Error("transfer failed", "err", err)
		color.Red("arcsend: %v", err)
		os.Exit(1)
	}
	color.Green("%s", ack)
}

// watchAndSend ships each file that settles in dir as its own one-entry
// archive. Unlike a one-shot send, a failed transfer is logged and the
// watcher keeps going.
func watchAndSend(c *client.Client, dir string) {
	w, err := watcher.New(dir, watcher.DefaultFilter())
	if err != nil {
		logger.Log.Error("watcher init failed", "err", err)
		color.Red("arcsend: %v", err)
		os.Exit(1)
	}
	if err := w.Start(); err != nil {
		logger.Log.Error("watcher start failed", "err", err)
		color.Red("arcsend: %v", err)
		os.Exit(1)
	}
	defer w.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	color.Cyan("watching %s, press Ctrl-C to stop", dir)
	for {
		select {
		case <-sig:
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			ack, err := c.Send([]string{event.Path})
			if err != nil {
				logger.Log.Error("auto-send failed", "path", event.Path, "err", err)
				color.Red("arcsend: %s: %v", event.Path, err)
				continue
			}
			color.Green("%s: %s", event.Path, ack)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			logger.Log.Error("watcher error", "err", err)
		}
	}
}
