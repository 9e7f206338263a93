package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/azrogers/mapzk/clauser"
)

var (
	tokensCmd = &cobra.Command{
		Use:   "tokens file",
		Short: "Dump the token stream of a single file to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <file>")
			}

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			tokens, perr := clauser.ParseAll(string(buf))
			if perr != nil {
				return printDetail(perr)
			}
			for _, tok := range tokens {
				fmt.Println(repr.String(tok))
			}
			return nil
		},
	}
)

// printDetail surfaces a parse error with its source excerpt when it carries
// one.
func printDetail(err error) error {
	var perr *clauser.Error
	if errors.As(err, &perr) {
		fmt.Fprintln(os.Stderr, perr.Detail())
		return errors.New("parse failed")
	}
	return err
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
