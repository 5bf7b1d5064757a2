package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/altsource-combiner/aggregator"
	"github.com/altsource-combiner/partitioner"
	"github.com/altsource-combiner/protocol/catalog"
	"github.com/altsource-combiner/shared/middleware"
)

// DefaultSources is the ordered list of repositories merged when no override is given
var DefaultSources = []string{
	"https://quarksources.github.io/dist/altstore-complete.min.json",
	"https://repository.apptesters.org",
	"https://raw.githubusercontent.com/usearcticsigner/Arctic-Repo/refs/heads/main/repo.json",
	"https://ipa.cypwn.xyz/cypwn.json",
	"https://github.com/khcrysalis/Feather/raw/main/app-repo.json",
	"https://flyinghead.github.io/flycast-builds/altstore.json",
	"https://cdn.dbservices.to/repo-jsons/c57a4ad1304d231dbbd7a77d21448bdeab1bbaf2.json",
	"https://raw.githubusercontent.com/Neoncat-OG/TrollStore-IPAs/refs/heads/main/apps_esign.json?v=1",
	"https://altstore.oatmealdome.me",
	"https://alt.crystall1ne.dev",
	"https://provenance-emu.com/apps.json",
	"https://quarksources.github.io/dist/quantumsource.min.json",
	"https://quarksources.github.io/dist/quantumsource%2B%2B.min.json",
	"https://cdn.dbservices.to/repo-jsons/9a470cb1c1dd49f9ec157d29ee36626e011b4436.json",
	"https://cdn.dbservices.to/repo-jsons/aa04d8c31a56e63c1a047534e86798546a8f1e08.json",
	"https://alt.getutm.app",
	"https://wuxu1.github.io/wuxu-complete-plus.json",
	"https://raw.githubusercontent.com/driftywinds/driftywinds.github.io/master/AltStore/apps.json",
	"https://esign.yyyue.xyz/app.json",
}

// Config holds the configuration for the combiner job
type Config struct {
	OutputDir    string
	NumChunks    int
	FetchTimeout time.Duration
	Sources      []string
	RepoOwner    string
	RepoName     string

	// Notifications are sent only when PublishQueue is set
	PublishQueue string
	RabbitMQURL  string
	RabbitMQHost string
	RabbitMQPort int
	RabbitMQUser string
	RabbitMQPass string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	numChunks, err := strconv.Atoi(getEnv("NUM_CHUNKS", strconv.Itoa(partitioner.DefaultNumChunks)))
	if err != nil {
		return nil, fmt.Errorf("invalid NUM_CHUNKS: %w", err)
	}
	if numChunks < 1 {
		return nil, fmt.Errorf("NUM_CHUNKS must be positive, got %d", numChunks)
	}

	timeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", aggregator.DefaultTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", timeout)
	}

	port, err := strconv.Atoi(getEnv("RABBITMQ_PORT", "5672"))
	if err != nil {
		return nil, fmt.Errorf("invalid RABBITMQ_PORT: %w", err)
	}

	sources, err := loadSources()
	if err != nil {
		return nil, err
	}

	return &Config{
		OutputDir:    getEnv("OUTPUT_DIR", "."),
		NumChunks:    numChunks,
		FetchTimeout: timeout,
		Sources:      sources,
		RepoOwner:    os.Getenv("GITHUB_REPOSITORY_OWNER"),
		RepoName:     os.Getenv("GITHUB_REPOSITORY_NAME"),
		PublishQueue: os.Getenv("PUBLISH_QUEUE"),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		RabbitMQHost: getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort: port,
		RabbitMQUser: getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPass: getEnv("RABBITMQ_PASS", "guest"),
	}, nil
}

// SourceURL is the self reference written into the combined catalog
func (c *Config) SourceURL() string {
	return catalog.CombinedSourceURL(c.RepoOwner, c.RepoName)
}

// NotificationsEnabled reports whether written files should be announced on RabbitMQ
func (c *Config) NotificationsEnabled() bool {
	return c.PublishQueue != ""
}

// ToMiddlewareConfig converts Config to middleware.ConnectionConfig, starting from the local defaults
func (c *Config) ToMiddlewareConfig() *middleware.ConnectionConfig {
	conn := middleware.DefaultConnectionConfig()
	conn.URL = c.RabbitMQURL
	if c.RabbitMQHost != "" {
		conn.Host = c.RabbitMQHost
	}
	if c.RabbitMQPort != 0 {
		conn.Port = c.RabbitMQPort
	}
	if c.RabbitMQUser != "" {
		conn.Username = c.RabbitMQUser
	}
	if c.RabbitMQPass != "" {
		conn.Password = c.RabbitMQPass
	}
	return conn
}

// loadSources resolves the source list: REPO_SOURCES_FILE, then REPO_SOURCES, then the defaults
func loadSources() ([]string, error) {
	if path := os.Getenv("REPO_SOURCES_FILE"); path != "" {
		sources, err := readSourcesFile(path)
		if err != nil {
			return nil, err
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("REPO_SOURCES_FILE %s lists no sources", path)
		}
		return sources, nil
	}
	if list := os.Getenv("REPO_SOURCES"); list != "" {
		sources := splitSources(strings.Split(list, ","))
		if len(sources) == 0 {
			return nil, fmt.Errorf("REPO_SOURCES lists no sources")
		}
		return sources, nil
	}
	return append([]string(nil), DefaultSources...), nil
}

// readSourcesFile reads one URL per line, ignoring blanks and '#' comments
func readSourcesFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return splitSources(lines), nil
}

func splitSources(raw []string) []string {
	sources := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		sources = append(sources, s)
	}
	return sources
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
