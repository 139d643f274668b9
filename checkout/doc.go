// Package checkout keeps local checkouts of GitHub repositories up to date.
//
// # Overview
//
// A Coordinator turns (account, repository, ref, token) into a directory
// holding that ref's files. Work is cached at two levels:
//
//  1. Mirrors: one mirror clone per repository, shared by every ref
//  2. Checkouts: one working tree per ref, tagged with the commit it holds
//
// # Layout
//
//	<base>/
//	├── git-askpass.sh              # written when a token is first used
//	├── repos/
//	│   └── octo/
//	│       ├── demo/               # mirror
//	│       └── demo.git-lock       # mirror lock
//	└── checkouts/
//	    └── octo/
//	        └── demo/
//	            ├── main/             # working tree
//	            ├── main.commit-hash  # commit record
//	            ├── main.git-lock     # lock file
//	            └── main.index        # private git index
//
// Refs containing a slash are path-escaped, so feature/x becomes
// checkouts/octo/demo/feature%2Fx.
//
// # Flow
//
// PrepareCheckout returns a fresh checkout that has a commit record at once.
// Otherwise it asks GitHub for the branch list, and for the commit when ref
// is not a branch. With the checkout's lock held it clones or fetches the
// mirror, fetching only when the mirror lacks the reported commit, and
// writes the tree unless the commit record already matches. The record is
// dropped before a tree is written and stored once it is complete. Credentials reach git through the
// environment of each git process and are never set on the current one.
//
// # Errors
//
// GitHub answers are mapped to codes the caller can test:
//
//	401 on the branch list or commit lookup   errors.CodeRepositoryPrivate
//	404 on the branch list                    errors.CodeRepositoryNotFound
//	404 or 422 on the commit lookup           errors.CodeReferenceNotFound
//
// IsPrivateRepo, IsRepoNotFound and IsRefNotFound test for them.
package checkout
