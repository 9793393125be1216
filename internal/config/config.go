package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/routegen-dev/routegen/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "routegen.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3400

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultRoutes is the default pages directory.
	DefaultRoutes = "app/pages"

	// DefaultOutput is the default path of the generated route table.
	DefaultOutput = "app/routes/routes_gen.go"

	// DefaultPackage is the default package name of the generated file.
	DefaultPackage = "routes"

	// DefaultPublic is the default public assets directory.
	DefaultPublic = "public"
)

// Config represents the complete routegen.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Routes is the path to the pages directory the compiler walks.
	Routes string `json:"routes,omitempty"`

	// Output is the path the generated route table is written to.
	Output string `json:"output,omitempty"`

	// Package is the package name of the generated file.
	Package string `json:"package,omitempty"`

	// Public is the path to the public assets directory included in deploys.
	Public string `json:"public,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Deploy contains deploy target configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Watch contains additional paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`
}

// DeployConfig contains deploy target settings.
type DeployConfig struct {
	// Bucket is the S3 bucket artifacts are uploaded to.
	Bucket string `json:"bucket,omitempty"`

	// Region is the bucket's AWS region.
	Region string `json:"region,omitempty"`

	// Prefix is the key prefix under which artifacts are stored.
	Prefix string `json:"prefix,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Routes:  DefaultRoutes,
		Output:  DefaultOutput,
		Package: DefaultPackage,
		Public:  DefaultPublic,
		Dev: DevConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for routegen.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R300").
				WithDetail("No routegen.json found in " + filepath.Dir(path)).
				WithSuggestion("Create routegen.json in the project root")
		}
		return nil, errors.New("R001").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("R001").
			WithDetail("Failed to parse routegen.json: " + err.Error()).
			WithSuggestion("Check that routegen.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("R001").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("R001").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes == "" {
		c.Routes = DefaultRoutes
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Package == "" {
		c.Package = DefaultPackage
	}
	if c.Public == "" {
		c.Public = DefaultPublic
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("R003").
			WithDetail("Port must be between 0 and 65535")
	}
	return nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// RoutesPath returns the absolute path to the pages directory.
func (c *Config) RoutesPath() string {
	if filepath.IsAbs(c.Routes) {
		return c.Routes
	}
	return filepath.Join(c.Dir(), c.Routes)
}

// OutputPath returns the absolute path of the generated route table.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(c.Dir(), c.Output)
}

// PublicPath returns the absolute path to the public assets directory.
func (c *Config) PublicPath() string {
	if filepath.IsAbs(c.Public) {
		return c.Public
	}
	return filepath.Join(c.Dir(), c.Public)
}

// WatchPaths returns the absolute paths the dev loop watches: the pages
// directory plus any extra configured paths.
func (c *Config) WatchPaths() []string {
	paths := []string{c.RoutesPath()}
	for _, p := range c.Dev.Watch {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir(), p)
		}
		paths = append(paths, p)
	}
	return paths
}

// HasDeployTarget reports whether a deploy bucket is configured.
func (c *Config) HasDeployTarget() bool {
	return c.Deploy.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing routegen.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R300").
				WithDetail("No routegen.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create routegen.json in the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
