package main

import (
	"github.com/tensaku-lab/backend/migration"
	"github.com/tensaku-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	defer s.close()

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Database %s is up to date", xcontext.Configs(s.ctx).Database.Database)
	return nil
}
