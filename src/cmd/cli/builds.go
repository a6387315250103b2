package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"versioning-backend/src/builds"
	"versioning-backend/src/contracts"
	"versioning-backend/src/pipeline"
	"versioning-backend/src/render"
	"versioning-backend/src/sanitize"
	"versioning-backend/src/tui"
)

// buildsCmd groups the build record commands
var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "Report and inspect CI build records",
}

// buildsListCmd prints every build record
var buildsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List build records",
	Long: `Print all build records as a table, or one record in detail with --id.

Example:
  versioning builds list
  versioning builds list --id editor-ubuntu-20.04-2021.1.0f1-linux64-1.0.0-5c1f0e9a2b7d4c63
  versioning builds list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		buildID, _ := cmd.Flags().GetString("id")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withApp(func(ctx context.Context, b *pipeline.Backend) error {
			if buildID != "" {
				build, err := b.Service.Get(ctx, buildID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), build)
				}
				fmt.Fprint(cmd.OutOrStdout(), render.Detail(*build, render.DefaultPalette()))
				return nil
			}

			all, err := b.Service.GetAll(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Table(all, render.DefaultPalette()))
			return nil
		})
	},
}

// buildsBrowseCmd opens the interactive build browser
var buildsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse build records interactively",
	Long: `Launch a two-panel TUI over all build records. Press s to cycle the
status filter, / to search by build or job ID and Tab to scroll the detail panel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, b *pipeline.Backend) error {
			all, err := b.Service.GetAll(ctx)
			if err != nil {
				return err
			}
			return tui.Start(all)
		})
	},
}

// buildsStartCmd records that a CI job started building an image
var buildsStartCmd = &cobra.Command{
	Use:   "start [job-id]",
	Short: "Report a build as started",
	Long: `Create (or reset) the record for one build combination with status started.
The build id is printed on success.

Example:
  versioning builds start job-1 --image-type editor --base-os ubuntu-20.04 \
    --unity-version 2021.1.0f1 --target-platform linux64 --repo-version 1.0.0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imageType, info, repo, err := versionFlags(cmd)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, b *pipeline.Backend) error {
			if err := b.Service.Create(ctx, args[0], imageType, info, repo); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), builds.BuildID(imageType, info))
			return nil
		})
	},
}

// buildsFailCmd records a build failure
var buildsFailCmd = &cobra.Command{
	Use:   "fail [build-id] [reason]",
	Short: "Report a build as failed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, b *pipeline.Backend) error {
			build, err := b.Service.MarkBuildAsFailed(ctx, args[0], contracts.BuildFailure{Reason: sanitize.Reason(args[1])})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s failed (%d failures)\n", build.BuildID, build.Meta.FailureCount)
			return nil
		})
	},
}

// buildsPublishCmd records that a build's image reached the registry
var buildsPublishCmd = &cobra.Command{
	Use:   "publish [build-id]",
	Short: "Report a build as published",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := dockerFlags(cmd)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, b *pipeline.Backend) error {
			build, err := b.Service.MarkBuildAsPublished(ctx, args[0], info)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s published as %s/%s:%s\n",
				build.BuildID, info.ImageRepo, info.ImageName, info.SpecificTag)
			return nil
		})
	},
}

// withApp opens the backends for one command and closes them afterwards.
func withApp(run func(ctx context.Context, b *pipeline.Backend) error) error {
	b, err := pipeline.Open(appConfig, appLogger)
	if err != nil {
		return err
	}
	defer b.Close()

	return run(context.Background(), b)
}

// versionFlags reads the build combination flags of the start command.
func versionFlags(cmd *cobra.Command) (contracts.ImageType, contracts.BuildVersionInfo, contracts.RepoVersionInfo, error) {
	flags := cmd.Flags()
	rawType, _ := flags.GetString("image-type")
	imageType, err := contracts.ParseImageType(rawType)
	if err != nil {
		return "", contracts.BuildVersionInfo{}, contracts.RepoVersionInfo{}, err
	}

	var info contracts.BuildVersionInfo
	info.BaseOS, _ = flags.GetString("base-os")
	info.UnityVersion, _ = flags.GetString("unity-version")
	info.TargetPlatform, _ = flags.GetString("target-platform")
	info.RepoVersion, _ = flags.GetString("repo-version")

	var repo contracts.RepoVersionInfo
	repo.Version = info.RepoVersion
	repo.Major, _ = flags.GetInt("repo-major")
	repo.Minor, _ = flags.GetInt("repo-minor")
	repo.Patch, _ = flags.GetInt("repo-patch")

	return imageType, info, repo, nil
}

func dockerFlags(cmd *cobra.Command) (contracts.DockerInfo, error) {
	flags := cmd.Flags()
	var info contracts.DockerInfo
	info.ImageRepo, _ = flags.GetString("image-repo")
	info.ImageName, _ = flags.GetString("image-name")
	info.FriendlyTag, _ = flags.GetString("friendly-tag")
	info.SpecificTag, _ = flags.GetString("specific-tag")
	info.Hash, _ = flags.GetString("hash")

	if info.ImageRepo == "" || info.ImageName == "" || info.Hash == "" {
		return contracts.DockerInfo{}, fmt.Errorf("--image-repo, --image-name and --hash are required")
	}
	return info, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func addVersionFlags(cmd *cobra.Command) {
	cmd.Flags().String("image-type", "", "Image type: base, hub or editor")
	cmd.Flags().String("base-os", "", "Base OS, e.g. ubuntu-20.04")
	cmd.Flags().String("unity-version", "", "Unity editor version")
	cmd.Flags().String("target-platform", "", "Target platform")
	cmd.Flags().String("repo-version", "", "Docker repo version")
	cmd.Flags().Int("repo-major", 0, "Docker repo major version")
	cmd.Flags().Int("repo-minor", 0, "Docker repo minor version")
	cmd.Flags().Int("repo-patch", 0, "Docker repo patch version")
	cmd.MarkFlagRequired("image-type")
}

func addDockerFlags(cmd *cobra.Command) {
	cmd.Flags().String("image-repo", "", "Registry repository")
	cmd.Flags().String("image-name", "", "Image name")
	cmd.Flags().String("friendly-tag", "", "Human readable tag")
	cmd.Flags().String("specific-tag", "", "Fully qualified tag")
	cmd.Flags().String("hash", "", "Image digest")
}

func init() {
	buildsListCmd.Flags().String("id", "", "Show one build in detail")
	buildsListCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	addVersionFlags(buildsStartCmd)
	addDockerFlags(buildsPublishCmd)

	buildsCmd.AddCommand(buildsListCmd)
	buildsCmd.AddCommand(buildsBrowseCmd)
	buildsCmd.AddCommand(buildsStartCmd)
	buildsCmd.AddCommand(buildsFailCmd)
	buildsCmd.AddCommand(buildsPublishCmd)
}
