package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ninelmnts/assetscan/asset_scanner"
	"github.com/ninelmnts/assetscan/asset_scanner/models"
	"github.com/ninelmnts/assetscan/report_emitter"
	"github.com/ninelmnts/assetscan/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootsEnv holds a JSON array of {"path","label"} objects.
const RootsEnv = "ASSETSCAN_ROOTS"

// OutputConfig names the artifacts written by a scan. Relative file names are
// placed under Dir; an empty SQLiteFile disables the SQLite export.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	JSONFile   string `mapstructure:"json_file"`
	CSVFile    string `mapstructure:"csv_file"`
	SQLiteFile string `mapstructure:"sqlite_file"`
}

// Config represents the structure of the configuration file
type Config struct {
	Roots         []models.RootSpec            `mapstructure:"roots"`
	IgnoreDirs    []string                     `mapstructure:"ignore_dirs"`
	MatchMode     string                       `mapstructure:"match_mode"`
	IgnoreFile    string                       `mapstructure:"ignore_file"`
	ExampleLimit  int                          `mapstructure:"example_limit"`
	TopExtensions int                          `mapstructure:"top_extensions"`
	Output        OutputConfig                 `mapstructure:"output"`
	Patterns      report_emitter.PatternConfig `mapstructure:"patterns"`
	Publish       report_emitter.PublishConfig `mapstructure:"publish"`
	LogLevel      string                       `mapstructure:"log_level"`
}

// DefaultConfig values
var DefaultConfig = Config{
	IgnoreDirs:    asset_scanner.DefaultIgnoreDirs,
	MatchMode:     string(asset_scanner.MatchSegment),
	IgnoreFile:    asset_scanner.DefaultIgnoreFile,
	ExampleLimit:  models.DefaultExampleLimit,
	TopExtensions: report_emitter.DefaultTopExtensions,
	Output: OutputConfig{
		Dir:      ".",
		JSONFile: "assetscan.json",
		CSVFile:  "assetscan.csv",
	},
	Patterns: report_emitter.DefaultPatternConfig(),
	Publish: report_emitter.PublishConfig{
		Region: "us-east-1",
		Prefix: "assetscan",
		UseSSL: true,
	},
	LogLevel: "info",
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs builds the configuration from defaults, .env, the config file,
// environment variables and flags, later sources winning.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	if err := loadDotEnv(cwd); err != nil {
		return nil, err
	}

	setDefaults()

	// Explicitly bind environment variables to config keys
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		viper.SetConfigName("assetscan-config")
		viper.AddConfigPath(cwd)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	roots, err := resolveRoots(rootCmd)
	if err != nil {
		return nil, err
	}
	if roots != nil {
		config.Roots = roots
	}

	return config, nil
}

// loadDotEnv reads cwd/.env into the process environment without overriding
// variables that are already set.
func loadDotEnv(cwd string) error {
	path := filepath.Join(cwd, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("ignore_dirs", DefaultConfig.IgnoreDirs)
	viper.SetDefault("match_mode", DefaultConfig.MatchMode)
	viper.SetDefault("ignore_file", DefaultConfig.IgnoreFile)
	viper.SetDefault("example_limit", DefaultConfig.ExampleLimit)
	viper.SetDefault("top_extensions", DefaultConfig.TopExtensions)
	viper.SetDefault("output.dir", DefaultConfig.Output.Dir)
	viper.SetDefault("output.json_file", DefaultConfig.Output.JSONFile)
	viper.SetDefault("output.csv_file", DefaultConfig.Output.CSVFile)
	viper.SetDefault("output.sqlite_file", DefaultConfig.Output.SQLiteFile)
	viper.SetDefault("patterns.revenue_keywords", DefaultConfig.Patterns.RevenueKeywords)
	viper.SetDefault("patterns.product_line_tokens", DefaultConfig.Patterns.ProductLineTokens)
	viper.SetDefault("patterns.max_examples", DefaultConfig.Patterns.MaxExamples)
	viper.SetDefault("publish.endpoint", DefaultConfig.Publish.Endpoint)
	viper.SetDefault("publish.region", DefaultConfig.Publish.Region)
	viper.SetDefault("publish.bucket", DefaultConfig.Publish.Bucket)
	viper.SetDefault("publish.prefix", DefaultConfig.Publish.Prefix)
	viper.SetDefault("publish.access_key", DefaultConfig.Publish.AccessKey)
	viper.SetDefault("publish.secret_key", DefaultConfig.Publish.SecretKey)
	viper.SetDefault("publish.use_ssl", DefaultConfig.Publish.UseSSL)
	viper.SetDefault("log_level", DefaultConfig.LogLevel)
}

// envKeys lists the keys readable from ASSETSCAN_<KEY> variables. Roots come
// from RootsEnv instead, as JSON.
var envKeys = []string{
	"ignore_dirs",
	"match_mode",
	"ignore_file",
	"example_limit",
	"top_extensions",
	"output.dir",
	"output.json_file",
	"output.csv_file",
	"output.sqlite_file",
	"patterns.revenue_keywords",
	"patterns.product_line_tokens",
	"patterns.max_examples",
	"publish.endpoint",
	"publish.region",
	"publish.bucket",
	"publish.prefix",
	"publish.access_key",
	"publish.secret_key",
	"publish.use_ssl",
	"log_level",
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	for _, key := range envKeys {
		_ = viper.BindEnv(key, EnvName(key))
	}
}

// EnvName returns the environment variable read for a configuration key.
func EnvName(key string) string {
	return "ASSETSCAN_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("ignore_dirs", flags.Lookup("ignore-dir"))
	_ = viper.BindPFlag("match_mode", flags.Lookup("match-mode"))
	_ = viper.BindPFlag("ignore_file", flags.Lookup("ignore-file"))
	_ = viper.BindPFlag("example_limit", flags.Lookup("example-limit"))
	_ = viper.BindPFlag("top_extensions", flags.Lookup("top-extensions"))
	_ = viper.BindPFlag("output.dir", flags.Lookup("output-dir"))
	_ = viper.BindPFlag("output.json_file", flags.Lookup("json-file"))
	_ = viper.BindPFlag("output.csv_file", flags.Lookup("csv-file"))
	_ = viper.BindPFlag("output.sqlite_file", flags.Lookup("sqlite-file"))
	_ = viper.BindPFlag("publish.endpoint", flags.Lookup("publish-endpoint"))
	_ = viper.BindPFlag("publish.bucket", flags.Lookup("publish-bucket"))
	_ = viper.BindPFlag("publish.prefix", flags.Lookup("publish-prefix"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML).")

	flags.StringArrayP("root", "r", nil, "Project root to scan as 'path' or 'path=label'. Repeatable.")
	flags.StringSlice("ignore-dir", DefaultConfig.IgnoreDirs, "Directory names excluded from the scan.")
	flags.String("match-mode", DefaultConfig.MatchMode, "How ignore names are matched: 'segment' (path component) or 'substring' (anywhere in the absolute path).")
	flags.String("ignore-file", DefaultConfig.IgnoreFile, "Per-root file of glob patterns to exclude; empty disables it.")
	flags.Int("example-limit", DefaultConfig.ExampleLimit, "Example paths kept per extension in the summary.")
	flags.Int("top-extensions", DefaultConfig.TopExtensions, "Extensions listed in the console digest.")

	flags.StringP("output-dir", "o", DefaultConfig.Output.Dir, "Directory that receives the scan artifacts.")
	flags.String("json-file", DefaultConfig.Output.JSONFile, "Structured document file name; a .yaml/.yml name writes YAML.")
	flags.String("csv-file", DefaultConfig.Output.CSVFile, "Curation table file name.")
	flags.String("sqlite-file", DefaultConfig.Output.SQLiteFile, "Optional SQLite export file name.")

	flags.String("publish-endpoint", DefaultConfig.Publish.Endpoint, "S3-compatible endpoint that receives the artifacts.")
	flags.String("publish-bucket", DefaultConfig.Publish.Bucket, "Bucket that receives the artifacts.")
	flags.String("publish-prefix", DefaultConfig.Publish.Prefix, "Object key prefix for published artifacts.")

	flags.String("log-level", DefaultConfig.LogLevel, "Log level (debug, info, warn, error).")
}

// resolveRoots returns the roots given by flag or environment, flag first.
// It returns nil when neither is set so the config file list stays in effect.
func resolveRoots(rootCmd *cobra.Command) ([]models.RootSpec, error) {
	if flag := rootCmd.PersistentFlags().Lookup("root"); flag != nil && flag.Changed {
		values, err := rootCmd.PersistentFlags().GetStringArray("root")
		if err != nil {
			return nil, err
		}
		roots := make([]models.RootSpec, 0, len(values))
		for _, value := range values {
			roots = append(roots, ParseRoot(value))
		}
		return roots, nil
	}

	if raw := strings.TrimSpace(os.Getenv(RootsEnv)); raw != "" {
		var roots []models.RootSpec
		if err := json.Unmarshal([]byte(raw), &roots); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", RootsEnv, err)
		}
		return roots, nil
	}

	return nil, nil
}

// ParseRoot splits "path=label" into a RootSpec. Without "=" the label is left
// empty and later defaults to the base name of the path.
func ParseRoot(value string) models.RootSpec {
	path, label, _ := strings.Cut(value, "=")
	return models.RootSpec{Path: path, Label: label}.Normalize()
}

// AddRoots appends command arguments as extra roots.
func (c *Config) AddRoots(args []string) {
	for _, arg := range args {
		c.Roots = append(c.Roots, ParseRoot(arg))
	}
}

// Validate checks the settings a scan cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Roots) == 0 {
		errs = append(errs, fmt.Errorf("no roots to scan: pass a path, --root, %s or a roots list in the config file", RootsEnv))
	}
	for i, root := range c.Roots {
		if strings.TrimSpace(root.Path) == "" {
			errs = append(errs, fmt.Errorf("root %d has an empty path", i))
		}
	}
	if c.ExampleLimit <= 0 {
		errs = append(errs, fmt.Errorf("example_limit must be positive, got %d", c.ExampleLimit))
	}
	if c.TopExtensions <= 0 {
		errs = append(errs, fmt.Errorf("top_extensions must be positive, got %d", c.TopExtensions))
	}
	if _, err := asset_scanner.ParseMatchMode(c.MatchMode); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Output.JSONFile) == "" {
		errs = append(errs, fmt.Errorf("output.json_file is required"))
	}
	if strings.TrimSpace(c.Output.CSVFile) == "" {
		errs = append(errs, fmt.Errorf("output.csv_file is required"))
	}
	if _, err := utils.ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// JSONPath is the location of the structured document.
func (c *Config) JSONPath() string {
	return c.outputPath(c.Output.JSONFile)
}

// CSVPath is the location of the curation table.
func (c *Config) CSVPath() string {
	return c.outputPath(c.Output.CSVFile)
}

// SQLitePath is the location of the SQLite export, or "" when disabled.
func (c *Config) SQLitePath() string {
	if strings.TrimSpace(c.Output.SQLiteFile) == "" {
		return ""
	}
	return c.outputPath(c.Output.SQLiteFile)
}

func (c *Config) outputPath(name string) string {
	if filepath.IsAbs(name) || c.Output.Dir == "" {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}
