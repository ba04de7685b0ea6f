package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vizlab/widgetctl/internal/config"
	"github.com/vizlab/widgetctl/internal/frontend"
	"github.com/vizlab/widgetctl/internal/observability"
	"github.com/vizlab/widgetctl/internal/packaging"
)

var (
	manifestPath string
	logLevel     string
	strict       bool
	force        bool
)

var rootCmd = &cobra.Command{
	Use:   "widgetctl",
	Short: "Packaging tool for the widget's notebook bindings",
	Long: `widgetctl orchestrates the packaging lifecycle of the widget's notebook
bindings: it rebuilds the front-end assets through npm before generating
metadata, staging a build tree, or packing a source distribution.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		observability.InitLogger("widgetctl", logLevel)
		log.Debug().Str("path", os.Getenv("PATH")).Msg("active search path")
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Generate distribution metadata (rebuilds frontend assets first)",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, builder, err := loadProject()
		if err != nil {
			return err
		}
		step := packaging.Prebuild(project, builder, strict, func() error {
			_, err := project.WriteMetadata()
			return err
		})
		return step()
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Stage the package tree under the build directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, builder, err := loadProject()
		if err != nil {
			return err
		}
		step := packaging.Prebuild(project, builder, strict, func() error {
			_, err := project.Stage()
			return err
		})
		return step()
	},
}

var sdistCmd = &cobra.Command{
	Use:   "sdist",
	Short: "Pack a source distribution tarball (strict asset rebuild)",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, builder, err := loadProject()
		if err != nil {
			return err
		}
		step := packaging.Prebuild(project, builder, true, func() error {
			_, err := project.Sdist()
			return err
		})
		return step()
	},
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Run the frontend asset build directly",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, builder, err := loadProject()
		if err != nil {
			return err
		}
		return builder.Build()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter widget.toml manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteTemplate(manifestPath, force); err != nil {
			return err
		}
		log.Info().Str("path", manifestPath).Msg("manifest written")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bindings version from the version file",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _, err := loadProject()
		if err != nil {
			return err
		}
		version, err := project.Version()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), version)
		return nil
	},
}

func loadProject() (*packaging.Project, *frontend.Builder, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	manifest, err := config.LoadManifest(abs)
	if err != nil {
		return nil, nil, err
	}
	root := filepath.Dir(abs)

	project, err := packaging.NewProject(root, manifest)
	if err != nil {
		return nil, nil, err
	}
	builder, err := frontend.NewBuilder(frontend.BuilderConfig{
		Root:     root,
		Frontend: manifest.Frontend,
	})
	if err != nil {
		return nil, nil, err
	}
	return project, builder, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "config", "c", "widget.toml", "path to the project manifest")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	metadataCmd.Flags().BoolVar(&strict, "strict", false, "fail when the asset rebuild fails")
	buildCmd.Flags().BoolVar(&strict, "strict", false, "fail when the asset rebuild fails")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing manifest")

	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sdistCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
