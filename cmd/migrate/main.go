package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/sql"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/pkg/errors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	if err := Main(os.Args[1:], internal.Envs(os.Environ())); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// Main applies the embedded migrations to the configured database, the
// command (up, down or version) is the first argument.
func Main(args []string, envs map[string]string) error {
	ctx := context.Background()
	fmt.Printf("migrate: employees v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	if len(args) < 1 {
		return errors.New("usage: migrate up|down|version")
	}
	logger := utilities.NewLogger()
	if err := logger.Configure(envs); err != nil {
		return err
	}
	sql := sql.NewMySql(logger)
	if err := sql.Configure(envs); err != nil {
		return err
	}
	switch command := args[0]; command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "up":
		return sql.MigrateUp(ctx)
	case "down":
		return sql.MigrateDown(ctx)
	case "version":
		version, dirty, err := sql.MigrateVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("version: %d (dirty: %t)\n", version, dirty)
	}
	return nil
}
