// Package git drives the git binary for mirror maintenance.
//
// CLI implements the four operations a checkout cache needs:
//
//	CloneMirror   git clone --mirror <url> <mirror>
//	Fetch         git fetch (inside the mirror)
//	ResolveRef    git rev-parse --verify --quiet <ref>^{commit}
//	CheckoutTree  git --work-tree=<dir> checkout <ref> -- .
//
// Credentials are never placed in the process environment. A Credentials
// value is turned into an environment map that is attached to the single git
// invocation that needs it:
//
//	creds := git.NewCredentials(token, askPassPath)
//	err := cli.Fetch(ctx, mirror, creds)
//
// The askpass helper (see WriteAskPass) answers git's username prompt with
// GIT_USERNAME and its password prompt with GIT_PASSWORD.
//
// Ref resolution can alternatively be served in-process by go-git through
// NativeResolver:
//
//	cli := git.NewCLI(exec.New(), git.WithResolver(git.NewNativeResolver()))
package git
