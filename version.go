package flowpaths

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/flowpaths.Version=...".
var Version = "0.3.0-dev"
