package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/azrogers/mapzk/clauser"
)

var (
	parseAsRepr bool

	parseCmd = &cobra.Command{
		Use:   "parse file",
		Short: "Bind a file into its generic form and dump it to stdout as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <file>")
			}

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var doc map[string]any
			if err := clauser.Unmarshal(string(buf), &doc); err != nil {
				return printDetail(err)
			}

			if parseAsRepr {
				repr.Println(doc)
				return nil
			}

			out, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
)

func init() {
	parseCmd.Flags().BoolVar(&parseAsRepr, "repr", false, "dump as a Go value instead of YAML")
	rootCmd.AddCommand(parseCmd)
}
