package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const appID = "precios"

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	c, err := parseEnv()
	if err != nil {
		log.WithError(err).Fatal("failed to read configuration")
	}
	closeLog := setupLogging(c)
	defer closeLog()

	app := &cli.App{
		Name:   appID,
		Usage:  "weekly price collection for the productos and mariscos catalogs",
		Action: func(ctx *cli.Context) error { return serve(ctx.Context, c) },
		Commands: []*cli.Command{
			serveCommand(c),
			migrateCommand(c),
			importCommand(c),
			exportCommand(c),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("command failed")
		closeLog()
		os.Exit(1)
	}
}

func setupLogging(c *config) func() {
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", c.LogLevel).Warn("unknown log level, keeping info")
	}

	if c.LogFile == "" {
		return func() {}
	}
	file, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.WithError(err).WithField("file", c.LogFile).Warn("cannot open log file, logging to stderr")
		return func() {}
	}
	log.SetOutput(file)
	return func() { file.Close() }
}
