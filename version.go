package trustroute

// Version is the module release, overridable with -ldflags "-X github.com/aretw0/trustroute.Version=...".
var Version = "0.1.0"
