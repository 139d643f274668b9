package main

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/codeforasia/git-jekyll-preview/checkout"
	"github.com/codeforasia/git-jekyll-preview/config"
	"github.com/codeforasia/git-jekyll-preview/exec"
	"github.com/codeforasia/git-jekyll-preview/git"
	"github.com/codeforasia/git-jekyll-preview/github"
	ghcli "github.com/codeforasia/git-jekyll-preview/github/providers/cli"
	"github.com/codeforasia/git-jekyll-preview/github/providers/sdk"
)

// newContainer registers every component built from cfg.
func newContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		newExecutor,
		newGitCLI,
		newProviderFactory,
		newLocker,
		newRecordStore,
		newCoordinator,
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

func newExecutor() exec.Executor {
	return exec.New(
		exec.WithInheritEnv(),
		exec.WithDisableColors(),
		exec.WithLogger(logger.WithField("component", "exec")),
	)
}

func newGitCLI(cfg *config.Config, executor exec.Executor) *git.CLI {
	opts := []git.Option{
		git.WithBinary(cfg.Git.Binary),
		git.WithTimeout(cfg.Git.Timeout),
	}
	if cfg.Git.Resolver == config.ResolverNative {
		opts = append(opts, git.WithResolver(git.NewNativeResolver()))
	}
	return git.NewCLI(executor, opts...)
}

func newProviderFactory(cfg *config.Config, executor exec.Executor) github.ProviderFactory {
	if cfg.GitHub.Provider == config.ProviderCLI {
		return ghcli.NewFactory(ghcli.WithExecutor(executor), ghcli.WithHost(cfg.GitHub.Host))
	}
	return sdk.NewFactory(sdk.WithBaseURL(cfg.GitHub.APIURL))
}

func newLocker(cfg *config.Config) checkout.Locker {
	return checkout.NewFileLocker(cfg.Lock.PollInterval)
}

func newRecordStore(cfg *config.Config, locker checkout.Locker) checkout.RecordStore {
	if cfg.Records != config.RecordsIndex {
		return nil
	}
	base, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		base = cfg.CacheDir
	}
	return checkout.NewIndexRecords(osfs.New("/"), filepath.Join(base, checkout.IndexFileName), locker)
}

func newCoordinator(
	cfg *config.Config,
	backend *git.CLI,
	providers github.ProviderFactory,
	locker checkout.Locker,
	records checkout.RecordStore,
) (*checkout.Coordinator, error) {
	opts := []checkout.Option{
		checkout.WithLocker(locker),
		checkout.WithCloneURL(cfg.GitHub.CloneURL),
		checkout.WithFreshness(checkout.MaxAge(cfg.Freshness)),
	}
	if records != nil {
		opts = append(opts, checkout.WithRecords(records))
	}
	return checkout.New(cfg.CacheDir, backend, providers, opts...)
}

// unwrapDig strips dig's wrapping so error codes stay visible.
func unwrapDig(err error) error {
	return dig.RootCause(err)
}
