package main

import (
	"flag"
	"os"

	"github.com/fatih/color"

	"arcsend/internal/config"
	"arcsend/internal/daemon"
	"arcsend/internal/server"
	"arcsend/internal/sysinfo"
	"arcsend/pkg/logger"
)

func main() {
	cfg := config.New()

	listenPort := flag.Int("l", cfg.ListenPort(), "port to listen on")
	destDir := flag.String("o", cfg.OutputDir(), "directory for received archives and extracted files")
	logFile := flag.String("log", cfg.LogFile(), "log file path")
	flag.Parse()

	logger.Init(*logFile)

	srv := server.New(*listenPort, *destDir)
	mgr := daemon.NewManager(cfg, srv)

	switch flag.Arg(0) {
	case "install":
		exitOn(mgr.Install())
		color.Green("service installed")
		return
	case "uninstall":
		exitOn(mgr.Uninstall())
		color.Green("service uninstalled")
		return
	case "start":
		exitOn(mgr.StartService())
		return
	case "stop":
		exitOn(mgr.StopService())
		return
	}

	snap := sysinfo.Collect()
	logger.Log.Info("host snapshot",
		"hostname", snap.Hostname,
		"os", snap.OS,
		"uptime", snap.Uptime,
		"cpu", snap.CPUUsage,
		"mem", snap.MemoryUsage,
		"disk", snap.DiskUsage,
	)

	exitOn(mgr.Run())
}

func exitOn(err error) {
	if err != nil {
		logger.Log.Error("service control failed", "err", err)
		color.Red("arcsendd: %v", err)
		os.Exit(1)
	}
}
