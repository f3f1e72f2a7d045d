package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AcsOpsConfigPathEnvVar = "ACS_OPS_CONFIG_PATH" // Environment variable for config path
)

// Config holds all configuration for the application
type Config struct {
	// Debug enables verbose logging and additional debug information
	Debug bool `mapstructure:"debug"`

	// Server configuration for the status API
	Server struct {
		Host     string        `mapstructure:"host"`
		Port     int           `mapstructure:"port"`
		Timeout  time.Duration `mapstructure:"timeout"`
		LogLevel string        `mapstructure:"log_level"`
	} `mapstructure:"server"`

	// Central holds connection settings for the RHACS Central API
	Central struct {
		Namespace     string        `mapstructure:"namespace"`
		RouteName     string        `mapstructure:"route_name"`
		Endpoint      string        `mapstructure:"endpoint"`
		AdminPassword string        `mapstructure:"admin_password"`
		APIToken      string        `mapstructure:"api_token"`
		TokenName     string        `mapstructure:"token_name"`
		InsecureTLS   bool          `mapstructure:"insecure_tls"`
		Timeout       time.Duration `mapstructure:"timeout"`
	} `mapstructure:"central"`

	// Operator holds OLM subscription settings for the RHACS operator
	Operator struct {
		Name            string `mapstructure:"name"`
		Channel         string `mapstructure:"channel"`
		Source          string `mapstructure:"source"`
		SourceNamespace string `mapstructure:"source_namespace"`
	} `mapstructure:"operator"`

	// Compliance holds settings for the compliance-scanning feature
	Compliance struct {
		Namespace        string   `mapstructure:"namespace"`
		ScanConfigName   string   `mapstructure:"scan_config_name"`
		ReportConfigName string   `mapstructure:"report_config_name"`
		Profiles         []string `mapstructure:"profiles"`
		ScanSchedule     string   `mapstructure:"scan_schedule"`
		ClusterName      string   `mapstructure:"cluster_name"`
	} `mapstructure:"compliance"`

	// VMScan holds settings for the VM vulnerability-scanning feature
	VMScan struct {
		Namespace         string `mapstructure:"namespace"`
		CertificateName   string `mapstructure:"certificate_name"`
		VMName            string `mapstructure:"vm_name"`
		FeatureFlagEnv    string `mapstructure:"feature_flag_env"`
		OperatorNamespace string `mapstructure:"operator_namespace"`
		OperatorName      string `mapstructure:"operator_name"`
		OperatorChannel   string `mapstructure:"operator_channel"`
	} `mapstructure:"vmscan"`

	// Poll holds the default readiness-poll policy
	Poll struct {
		Interval time.Duration `mapstructure:"interval"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"poll"`

	// Profile holds the local key/value store settings
	Profile struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"profile"`
}

// Load initializes and returns the configuration from all sources:
// 1. Command-line flags (highest priority)
// 2. Environment variables (prefixed with ACS_OPS_)
// 3. Configuration file (lowest priority)
func Load(configPath string) (*Config, error) {
	// Check for environment variable config path if not explicitly provided
	if configPath == "" {
		if envPath := os.Getenv(AcsOpsConfigPathEnvVar); envPath != "" {
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file specified in %s not found: %s", AcsOpsConfigPathEnvVar, envPath)
			}
			configPath = envPath
		}
	} else {
		// Verify explicitly provided config file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yml in the current directory
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Read environment variables
	v.SetEnvPrefix("ACS_OPS")
	v.AutomaticEnv()
	// Replace dots with underscores in env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		} else if configPath != "" {
			// Only error if config file was explicitly specified
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
		// If no config file was specified, we'll use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Poll.Interval >= config.Poll.Timeout {
		return nil, fmt.Errorf("poll interval (%v) must be smaller than poll timeout (%v)",
			config.Poll.Interval, config.Poll.Timeout)
	}

	return &config, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.log_level", "info")

	// Central defaults
	v.SetDefault("central.namespace", "stackrox")
	v.SetDefault("central.route_name", "central")
	v.SetDefault("central.token_name", "acs-ops")
	v.SetDefault("central.insecure_tls", true)
	v.SetDefault("central.timeout", "30s")

	// Operator defaults
	v.SetDefault("operator.name", "rhacs-operator")
	v.SetDefault("operator.channel", "stable")
	v.SetDefault("operator.source", "redhat-operators")
	v.SetDefault("operator.source_namespace", "openshift-marketplace")

	// Compliance defaults
	v.SetDefault("compliance.namespace", "openshift-compliance")
	v.SetDefault("compliance.scan_config_name", "acs-catch-all")
	v.SetDefault("compliance.report_config_name", "acs-vuln-report")
	v.SetDefault("compliance.profiles", []string{"ocp4-cis", "ocp4-cis-node"})
	v.SetDefault("compliance.scan_schedule", "0 0 * * *")
	v.SetDefault("compliance.cluster_name", "production")

	// VM scanning defaults
	v.SetDefault("vmscan.namespace", "stackrox")
	v.SetDefault("vmscan.certificate_name", "vsock-listener-cert")
	v.SetDefault("vmscan.vm_name", "vuln-scan-target")
	v.SetDefault("vmscan.feature_flag_env", "ROX_VIRTUAL_MACHINES")
	v.SetDefault("vmscan.operator_namespace", "cert-manager-operator")
	v.SetDefault("vmscan.operator_name", "openshift-cert-manager-operator")
	v.SetDefault("vmscan.operator_channel", "stable-v1")

	// Poll defaults
	v.SetDefault("poll.interval", "10s")
	v.SetDefault("poll.timeout", "300s")

	// Profile defaults
	v.SetDefault("profile.path", "")
}
