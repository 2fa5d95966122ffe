package config

import (
	_ "embed"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/facefinder/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed endpoints.yaml
var endpointsYAML []byte

// DefaultRoutes lists every screen the web shell can serve.
var DefaultRoutes = []string{"/", "/register", "/find", "/list"}

type Config struct {
	Backend BackendConfig
	HTTP    HTTPConfig
	Web     WebConfig
	Find    FindConfig
	Links   []Link
}

type BackendConfig struct {
	Default  string                     `yaml:"default"`
	Variants map[string]EndpointsConfig `yaml:"variants"`
}

// EndpointsConfig is the raw URL bundle of one backend variant.
type EndpointsConfig struct {
	FindImageURL string `yaml:"find_image_url"`
	UploadURL    string `yaml:"upload_url"`
	ListFacesURL string `yaml:"list_faces_url"`
}

type HTTPConfig struct {
	Timeout      time.Duration // 0 disables the per-request timeout
	Retries      int           // retries for idempotent GETs, defaults to 0
	RetryBackoff time.Duration
	CaptureDir   string // directory to save API responses (optional)
}

type WebConfig struct {
	Host           string
	Port           int
	Routes         []string // screens registered in the router, defaults to DefaultRoutes
	AllowedOrigins []string // CORS whitelist in addition to localhost
}

type FindConfig struct {
	MaxDimension int // downscale images before recognition, 0 disables
}

// Link is one entry of the header's links drawer.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type registryFile struct {
	BackendConfig `yaml:",inline"`
	Links         []Link `yaml:"links"`
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envDuration reads a Go duration ("30s", "1m") from an environment variable.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

// envList reads a comma-separated list, dropping empty items.
func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// applyEndpointOverrides lets single URLs of a variant be replaced from the environment,
// e.g. FACEFINDER_PYTHON_UPLOAD_URL. Unknown variants are created when all three are set.
func applyEndpointOverrides(variants map[string]EndpointsConfig) {
	names := envList("FACEFINDER_EXTRA_VARIANTS", nil)
	for name := range variants {
		names = append(names, name)
	}
	for _, name := range names {
		key := strings.ToUpper(name)
		eps := variants[key]
		prefix := "FACEFINDER_" + key + "_"
		if v := os.Getenv(prefix + "FIND_IMAGE_URL"); v != "" {
			eps.FindImageURL = v
		}
		if v := os.Getenv(prefix + "UPLOAD_URL"); v != "" {
			eps.UploadURL = v
		}
		if v := os.Getenv(prefix + "LIST_FACES_URL"); v != "" {
			eps.ListFacesURL = v
		}
		if eps.FindImageURL != "" && eps.UploadURL != "" && eps.ListFacesURL != "" {
			variants[key] = eps
		}
	}
}

func Load() *Config {
	var registry registryFile
	if err := yaml.Unmarshal(endpointsYAML, &registry); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded endpoints.yaml: " + err.Error())
	}

	variants := make(map[string]EndpointsConfig, len(registry.Variants))
	for name, eps := range registry.Variants {
		variants[strings.ToUpper(name)] = eps
	}
	applyEndpointOverrides(variants)

	defaultVariant := registry.Default
	if v := os.Getenv("FACEFINDER_BACKEND"); v != "" {
		defaultVariant = v
	}

	return &Config{
		Backend: BackendConfig{
			Default:  strings.ToUpper(defaultVariant),
			Variants: variants,
		},
		HTTP: HTTPConfig{
			Timeout:      envDuration("FACEFINDER_HTTP_TIMEOUT", constants.DefaultHTTPTimeout),
			Retries:      envInt("FACEFINDER_HTTP_RETRIES", 0),
			RetryBackoff: envDuration("FACEFINDER_HTTP_RETRY_BACKOFF", constants.DefaultRetryBackoff),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8080),
			Routes:         envList("FACEFINDER_ROUTES", DefaultRoutes),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS", nil),
		},
		Find: FindConfig{
			MaxDimension: envInt("FACEFINDER_FIND_MAX_DIMENSION", 0),
		},
		Links: registry.Links,
	}
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// RouteEnabled reports whether the given screen path is registered.
func (c *WebConfig) RouteEnabled(path string) bool {
	return slices.Contains(c.Routes, path)
}
