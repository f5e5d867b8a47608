// Package keyword defines the contract between the validation engine and
// individual schema keywords, and ships the draft-4 keyword set.
//
// Each keyword is an Entry in a Registry: a syntax Checker run once per
// schema fragment, and an optional Factory that builds a stateless
// Validator from the keyword value and the fragment's digest. Validators
// log violations to a report.Report and only return an error when the
// whole validation call must stop.
//
// Custom keywords are added by registering an Entry:
//
//	reg := keyword.DraftV4()
//	_ = reg.Register(keyword.Entry{
//	    Name:  "even",
//	    Kinds: value.Numbers,
//	    Check: func(kw, _ value.Value, _ regex.Engine) error { ... },
//	    Build: func(kw, _ value.Value, _ digest.Digest) (keyword.Validator, error) { ... },
//	})
package keyword
