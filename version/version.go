// Package version reports the build identity of the binaries.
//
// The values are set at link time:
//
//	go build -ldflags "-X github.com/farcloser/snare/version.version=v0.1.0 -X github.com/farcloser/snare/version.commit=abc1234"
//
// When they are not, the module build information is used instead.
package version

import "runtime/debug"

const name = "snare"

//nolint:gochecknoglobals // set by the linker
var (
	version = ""
	commit  = ""
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, or the module version of the build.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

// Commit returns the revision the binary was built from.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
