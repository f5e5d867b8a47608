package jsonval

// Version is the release of the library and its tools. Release builds
// override it with -ldflags "-X github.com/aretw0/jsonval.Version=...".
var Version = "0.1.0-dev"
