package build

// Overridden at link time with -ldflags "-X github.com/mt-inside/url-screener/internal/build.Version=..."
var Version = "dev"

const Name = "url-screener"

func UserAgent() string {
	return Name + "/" + Version
}
