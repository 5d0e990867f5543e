package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"photo-gallery/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	MediaDir       string
	CacheDir       string
	DatabaseDir    string
	Port           string
	MetricsPort    string
	MetricsEnabled bool

	ThumbnailHeight int
	DisplayHeight   int
	WarmThumbnails  bool

	LogStaticFiles  bool
	LogHealthChecks bool

	SessionSweepInterval time.Duration

	// Derived paths
	DatabasePath string
	RenditionDir string
}

// LoadConfig loads and validates configuration. An optional YAML file named
// by CONFIG_FILE supplies base values; environment variables override it.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	base, err := loadFileConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	mediaDir := getEnv("MEDIA_DIR", base.str("mediaDir", "/media"))
	cacheDir := getEnv("CACHE_DIR", base.str("cacheDir", "/cache"))
	databaseDir := getEnv("DATABASE_DIR", base.str("databaseDir", "/database"))
	port := getEnv("PORT", base.str("port", "8080"))
	metricsPort := getEnv("METRICS_PORT", base.str("metricsPort", "9090"))
	metricsEnabled := getEnvBool("METRICS_ENABLED", base.boolean("metricsEnabled", true))
	thumbHeight := getEnvInt("THUMBNAIL_HEIGHT", base.integer("thumbnailHeight", 200))
	displayHeight := getEnvInt("DISPLAY_HEIGHT", base.integer("displayHeight", 600))
	warm := getEnvBool("WARM_THUMBNAILS", base.boolean("warmThumbnails", false))
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", base.boolean("logStaticFiles", false))
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", base.boolean("logHealthChecks", true))
	sweepStr := getEnv("SESSION_SWEEP_INTERVAL", base.str("sessionSweepInterval", "1h"))

	logging.Info("  MEDIA_DIR:              %s", mediaDir)
	logging.Info("  CACHE_DIR:              %s", cacheDir)
	logging.Info("  DATABASE_DIR:           %s", databaseDir)
	logging.Info("  PORT:                   %s", port)
	logging.Info("  METRICS_PORT:           %s", metricsPort)
	logging.Info("  METRICS_ENABLED:        %v", metricsEnabled)
	logging.Info("  THUMBNAIL_HEIGHT:       %d", thumbHeight)
	logging.Info("  DISPLAY_HEIGHT:         %d", displayHeight)
	logging.Info("  WARM_THUMBNAILS:        %v", warm)
	logging.Info("  SESSION_SWEEP_INTERVAL: %s", sweepStr)
	logging.Info("  LOG_STATIC_FILES:       %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:      %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	sweep, err := time.ParseDuration(sweepStr)
	if err != nil {
		logging.Warn("  Invalid SESSION_SWEEP_INTERVAL, using default: 1h")
		sweep = time.Hour
	}
	if thumbHeight <= 0 || displayHeight <= 0 {
		return nil, fmt.Errorf("rendition heights must be positive (thumbnail %d, display %d)", thumbHeight, displayHeight)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	mediaDir, err = filepath.Abs(mediaDir)
	if err != nil {
		return nil, fmt.Errorf("resolving media directory: %w", err)
	}
	logging.Info("  Media directory (absolute): %s", mediaDir)

	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache directory: %w", err)
	}
	logging.Info("  Cache directory (absolute): %s", cacheDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving database directory: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	// The media tree must exist; an empty gallery is fine, a missing one
	// is a deployment mistake.
	if err := ensureDirectory(mediaDir, "media"); err != nil {
		return nil, fmt.Errorf("media directory: %w", err)
	}

	config := &Config{
		MediaDir:             mediaDir,
		CacheDir:             cacheDir,
		DatabaseDir:          databaseDir,
		Port:                 port,
		MetricsPort:          metricsPort,
		MetricsEnabled:       metricsEnabled,
		ThumbnailHeight:      thumbHeight,
		DisplayHeight:        displayHeight,
		WarmThumbnails:       warm,
		LogStaticFiles:       logStaticFiles,
		LogHealthChecks:      logHealthChecks,
		SessionSweepInterval: sweep,
		DatabasePath:         filepath.Join(databaseDir, "gallery.db"),
		RenditionDir:         filepath.Join(cacheDir, "renditions"),
	}

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable: %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	if err := ensureDirectory(config.RenditionDir, "renditions"); err != nil {
		return nil, fmt.Errorf("rendition cache directory: %w", err)
	}
	if err := testWriteAccess(config.RenditionDir); err != nil {
		return nil, fmt.Errorf("rendition cache directory is not writable: %w", err)
	}
	logging.Info("  [OK] Rendition cache directory is writable")

	return config, nil
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __           ______       ____
   / __ \/ /_  ____  / /_____     / ____/___ _ / / /__  _______  __
  / /_/ / __ \/ __ \/ __/ __ \   / / __/ __ '/ / / _ \/ ___/ / / /
 / ____/ / / / /_/ / /_/ /_/ /  / /_/ / /_/ / / /  __/ /  / /_/ /
/_/   /_/ /_/\____/\__/\____/   \____/\__,_/_/_/\___/_/   \__, /
                                                         /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if name == "media" && logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			fileCount, dirCount := 0, 0
			for _, e := range entries {
				if e.IsDir() {
					dirCount++
				} else {
					fileCount++
				}
			}
			logging.Debug("    Contents: %d files, %d directories (top level)", fileCount, dirCount)
		}
	}

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
