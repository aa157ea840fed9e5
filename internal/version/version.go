package version // import "github.com/Xunop/e-editor/internal/version"

// Set with -ldflags "-X github.com/Xunop/e-editor/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "HEAD"
	BuildDate = "undefined"
)

func GetCurrentVersion() string {
	return Version + " (" + Commit + ", " + BuildDate + ")"
}
