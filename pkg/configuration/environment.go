package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/labdesk/pkg/logging"
)

const Production = "production"

const (
	RedirectFollow = "follow"
	RedirectManual = "manual"
)

var singleton = sync.OnceValue(func() *Configuration {
	c, err := New(".env", ".env.local")
	if err != nil {
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files, looking in the working directory first and
// then in the nearest directory that holds a go.mod.
func LoadEnv(envFiles []string) (int, error) {
	root := moduleRoot()

	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
			continue
		}
		if root == "" || filepath.IsAbs(file) {
			continue
		}
		if candidate := filepath.Join(root, file); fs.FileExists(candidate) {
			existingFiles = append(existingFiles, candidate)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type NavigationOptions struct {
	ContentSelector string        `env:"NAV_CONTENT_SELECTOR" envDefault:".container"`
	OptOutAttribute string        `env:"NAV_OPT_OUT_ATTRIBUTE" envDefault:"data-no-ajax"`
	BusyLabel       string        `env:"NAV_BUSY_LABEL" envDefault:"Processing..."`
	ModalSelector   string        `env:"NAV_MODAL_SELECTOR" envDefault:".modal-overlay"`
	RedirectMode    string        `env:"NAV_REDIRECT_MODE" envDefault:"follow"` // follow or manual
	RequestTimeout  time.Duration `env:"NAV_REQUEST_TIMEOUT" envDefault:"30s"`
	DefaultPanel    string        `env:"NAV_DEFAULT_PANEL" envDefault:"dashboard"`
}

func (n *NavigationOptions) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(n.RedirectMode))
	if mode == "" {
		mode = RedirectFollow
	}
	switch mode {
	case RedirectFollow, RedirectManual:
	default:
		return fmt.Errorf("invalid NAV_REDIRECT_MODE=%q (expected follow|manual)", n.RedirectMode)
	}
	n.RedirectMode = mode

	if strings.TrimSpace(n.ContentSelector) == "" {
		return fmt.Errorf("NAV_CONTENT_SELECTOR must not be empty")
	}
	if n.RequestTimeout < 0 {
		return fmt.Errorf("NAV_REQUEST_TIMEOUT must be non-negative, got %s", n.RequestTimeout)
	}
	return nil
}

type ToastOptions struct {
	Dwell time.Duration `env:"TOAST_DWELL" envDefault:"4s"`
	Exit  time.Duration `env:"TOAST_EXIT" envDefault:"300ms"`
	Frame time.Duration `env:"TOAST_FRAME" envDefault:"16ms"`
}

func (t *ToastOptions) Validate() error {
	if t.Dwell <= 0 {
		return fmt.Errorf("TOAST_DWELL must be positive, got %s", t.Dwell)
	}
	if t.Exit < 0 || t.Frame < 0 {
		return fmt.Errorf("TOAST_EXIT and TOAST_FRAME must be non-negative")
	}
	return nil
}

type FragmentOptions struct {
	Endpoint       string `env:"FRAGMENT_ENDPOINT" envDefault:"/calendar/fragment"`
	ContainerID    string `env:"FRAGMENT_CONTAINER_ID" envDefault:"calendar-container"`
	FailureMessage string `env:"FRAGMENT_FAILURE_MESSAGE" envDefault:"Failed to load calendar. Please try again."`
	ReportToToast  bool   `env:"FRAGMENT_REPORT_TO_TOAST" envDefault:"false"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"100"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Enabled && r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"labdesk"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Navigation    NavigationOptions
	Toast         ToastOptions
	Fragment      FragmentOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions

	BaseURL          string `env:"LABDESK_BASE_URL" envDefault:"http://localhost:3200"`
	LayoutsPath      string `env:"LAYOUTS_PATH"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	// Empty means log to stdout only.
	LogPath string `env:"LOG_PATH"`
	// Sent on every programmatic request; the reference server echoes it back.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Origins allowed to call the reference server from a browser.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3200"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

// New builds a configuration from the environment after loading envFiles.
func New(envFiles ...string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Navigation.Validate(); err != nil {
		return fmt.Errorf("navigation configuration error: %w", err)
	}
	if err := c.Toast.Validate(); err != nil {
		return fmt.Errorf("toast configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}

	if c.LogPath != "" {
		f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
		if err != nil {
			return err
		}
		c.logFile = f
		c.logger = logger
	} else {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
	}

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
