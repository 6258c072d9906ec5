package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer closeDB(db)

			logrus.Info("Schema is up to date")
			return nil
		},
	}
}
