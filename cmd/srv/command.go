package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Tensaku"
	s.app.Usage = "Social critique platform with escrowed rewards"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the toml config file",
			EnvVars: []string{"TENSAKU_CONFIG"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serve the http api and re-drive pending reward settlements periodically.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database to the latest version",
			Category:    "Database",
			Description: `Apply the embedded mysql migrations.`,
		},
		{
			Action:      s.startSettler,
			Name:        "settler",
			Usage:       "Start the settlement retry worker",
			Category:    "Worker",
			Description: `Consume settlement failures from kafka and retry the payout after a delay.`,
		},
	}
}
