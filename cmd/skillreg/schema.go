package main

import (
	"os"

	"github.com/jingkaihe/skillreg/pkg/presenter"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the skill header",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		if err := presenter.JSON(skills.HeaderSchema()); err != nil {
			presenter.Error(err, "failed to print schema")
			os.Exit(1)
		}
	},
}
