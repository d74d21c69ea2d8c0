package version

// Version is set at build time via ldflags and logged on startup.
// Example: go build -ldflags "-X github.com/shishobooks/bookshelf/pkg/version.Version=1.0.0".
var Version = "dev"
