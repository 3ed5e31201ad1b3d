package vali

// Version is the release of the module, overridden at build time with
// -ldflags "-X github.com/aretw0/vali.Version=v1.2.3".
var Version = "dev"
