package github

import (
	"time"

	"github.com/codeforasia/git-jekyll-preview/errors"
)

// BranchData contains branch information from the provider.
type BranchData struct {
	Name      string `json:"name"`
	SHA       string `json:"sha"`
	Protected bool   `json:"protected"`
}

// CommitData contains commit information from the provider.
type CommitData struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	HTMLURL string `json:"html_url"`

	// Date is the author date. Zero when the provider did not report one.
	Date time.Time `json:"date"`
}

// ParseGitHubTime parses a timestamp string from the GitHub API.
// GitHub uses RFC3339 format for timestamps.
func ParseGitHubTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.CodeInvalidInput, "failed to parse timestamp")
	}
	return t, nil
}
