package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/azrogers/mapzk/clauser"
)

// Config is read from .clauser.yaml at the root of a checked directory.
type Config struct {
	Extensions []string `yaml:"extensions"`
}

const configFileName = ".clauser.yaml"

func loadConfig(dir string) (Config, error) {
	result := Config{Extensions: []string{".txt"}}

	buf, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return result, err
	}
	if err := yaml.Unmarshal(buf, &result); err != nil {
		return result, err
	}
	return result, nil
}

var (
	checkCmd = &cobra.Command{
		Use:   "check directory",
		Short: "Parse every data file under a directory tree and report errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <directory>")
			}
			dir := args[0]

			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}

			logger := logrus.StandardLogger()
			failed := 0
			checked := 0

			err = fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				// skip hidden directories, in particular .git
				if strings.HasPrefix(path, ".") || strings.Contains(path, "/.") {
					return nil
				}
				if d.IsDir() || !slices.Contains(cfg.Extensions, filepath.Ext(path)) {
					return nil
				}

				buf, err := os.ReadFile(filepath.Join(dir, path))
				if err != nil {
					return err
				}

				checked = checked + 1
				var doc map[string]any
				if err := clauser.Unmarshal(string(buf), &doc); err != nil {
					failed = failed + 1
					var perr *clauser.Error
					if errors.As(err, &perr) {
						logger.WithField("file", path).Error(perr.Detail())
					} else {
						logger.WithField("file", path).Error(err)
					}
					return nil
				}
				if verbose {
					logger.WithField("file", path).Info("ok")
				}
				return nil
			})
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"checked": checked,
				"failed":  failed,
			}).Info("done")
			if failed > 0 {
				return errors.New("some files failed to parse")
			}
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(checkCmd)
}
