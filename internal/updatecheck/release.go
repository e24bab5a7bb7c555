package updatecheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
)

// RepoSlug is the GitHub repository releases are published to.
const RepoSlug = "embeddable-hq/embeddable-cli"

// ErrNoRelease is returned when the repository has no release for this
// platform.
var ErrNoRelease = errors.New("no release found for this platform")

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create release source: %w", err)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:    source,
		Validator: &selfupdate.ChecksumValidator{UniqueFilename: "checksums.txt"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}
	return updater, nil
}

// Latest returns the newest published release.
func Latest(ctx context.Context) (*selfupdate.Release, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, err
	}
	release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(RepoSlug))
	if err != nil {
		return nil, fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return nil, ErrNoRelease
	}
	return release, nil
}

// LatestVersion returns the version of the newest published release.
func LatestVersion(ctx context.Context) (string, error) {
	release, err := Latest(ctx)
	if err != nil {
		return "", err
	}
	return release.Version(), nil
}

// Apply replaces the running executable with release.
func Apply(ctx context.Context, release *selfupdate.Release) error {
	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	updater, err := newUpdater()
	if err != nil {
		return err
	}
	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	return nil
}
