package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds sender and receiver settings. Fields are unexported to
// prevent modification after load; command-line flags in the cmds take
// these values as their defaults.
type Config struct {
	serverAddr         string
	listenPort         int
	outputDir          string
	logFile            string
	serviceName        string
	serviceDisplayName string
	serviceDescription string
}

func New() *Config {
	_ = godotenv.Load() // ignore error if .env not found

	serverAddr := os.Getenv("ARCSEND_SERVER")
	if serverAddr == "" {
		serverAddr = "127.0.0.1:50001"
	}

	listenPort, err := strconv.Atoi(os.Getenv("ARCSEND_LISTEN_PORT"))
	if err != nil || listenPort < 0 {
		listenPort = 50001
	}

	outputDir := os.Getenv("ARCSEND_OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "."
	}

	logFile := os.Getenv("ARCSEND_LOG_FILE")
	if logFile == "" {
		logFile = "arcsend.log"
	}

	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "arcsendd"
	}

	serviceDisplayName := os.Getenv("SERVICE_DISPLAY_NAME")
	if serviceDisplayName == "" {
		serviceDisplayName = "Arcsend Receiver"
	}

	serviceDescription := os.Getenv("SERVICE_DESCRIPTION")
	if serviceDescription == "" {
		serviceDescription = "Receives framed archive transfers and extracts them into the output directory"
	}

	return &Config{
		serverAddr:         serverAddr,
		listenPort:         listenPort,
		outputDir:          outputDir,
		logFile:            logFile,
		serviceName:        serviceName,
		serviceDisplayName: serviceDisplayName,
		serviceDescription: serviceDescription,
	}
}

// Getter methods (immutable from outside)

func (c *Config) ServerAddr() string {
	return c.serverAddr
}

func (c *Config) ListenPort() int {
	return c.listenPort
}

func (c *Config) OutputDir() string {
	return c.outputDir
}

func (c *Config) LogFile() string {
	return c.logFile
}

func (c *Config) ServiceName() string {
	return c.serviceName
}

func (c *Config) ServiceDisplayName() string {
	return c.serviceDisplayName
}

func (c *Config) ServiceDescription() string {
	return c.serviceDescription
}
