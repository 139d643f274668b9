package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	root := buildRootCommand(os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error kinds a caller may want to script against.
func exitCode(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeRepositoryPrivate:
		return 3
	case errors.CodeRepositoryNotFound:
		return 4
	case errors.CodeReferenceNotFound:
		return 5
	case errors.CodeInvalidInput, errors.CodeInvalidConfig:
		return 2
	default:
		return 1
	}
}

// reportError writes err for humans, or as JSON when asJSON is set.
func reportError(w io.Writer, err error, asJSON bool) {
	if !asJSON {
		logger.Errorf("%s", err)
		return
	}

	data, marshalErr := json.Marshal(errors.ToJSON(err))
	if marshalErr != nil {
		logger.Errorf("%s", err)
		return
	}
	_, _ = fmt.Fprintln(w, string(data))
}
