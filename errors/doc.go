// Package errors provides structured error handling for jekit.
//
// Errors carry a code for categorization, a retry classification, optional
// context metadata and an optional cause. They stay compatible with the
// standard library (errors.Is, errors.As, errors.Unwrap).
//
// # Quick Start
//
// Creating errors:
//
//	err := errors.New(errors.CodeRepositoryNotFound, "octo/demo does not exist")
//	err := errors.Newf(errors.CodeInvalidInput, "invalid account %q", account)
//
// Wrapping errors:
//
//	if _, err := git.Run("fetch"); err != nil {
//	    return errors.Wrap(err, errors.CodeExecutionFailed, "git fetch failed")
//	}
//
// Adding context:
//
//	err = errors.WithContext(err, "mirror", mirrorPath)
//
// Inspecting errors:
//
//	switch errors.GetCode(err) {
//	case errors.CodeRepositoryPrivate:
//	    // ask the user to authenticate
//	case errors.CodeReferenceNotFound:
//	    // report the unknown ref
//	}
//
// Serializing errors for machine-readable output:
//
//	json.NewEncoder(os.Stdout).Encode(errors.ToJSON(err))
package errors
