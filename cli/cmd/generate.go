package cmd

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/azrogers/mapzk/gen"
)

var (
	generateOutput string

	generateCmd = &cobra.Command{
		Use:   "generate directory",
		Short: "Generate UnmarshalClauser methods for duplicate-key structs in a package",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <directory>")
			}

			path, err := gen.Run(args[0], generateOutput)
			if err != nil {
				return err
			}
			logrus.WithField("output", path).Info("generated")
			return nil
		},
	}
)

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "clauser_gen.go", "name of the generated file")
	rootCmd.AddCommand(generateCmd)
}
