package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show and validate docwatcher configuration",
	Long: `am - show and validate docwatcher configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. System config (` + am.SystemConfigPath + `)
3. Project config (./` + am.ConfigFileName + `, searched upwards)
4. --config file
5. Environment variables (WATCH_FOLDER, PAPERLESS_CONSUME_FOLDER, LOG_LEVEL,
   and DOCWATCHER_* for every key, e.g. DOCWATCHER_SERVER_PORT)

Examples:
  docwatcher am show                    # Show current configuration
  docwatcher am show --format json      # Show configuration in JSON format
  docwatcher am get stabilization.settle
  docwatcher am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., watch.folder, server.port)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate the effective configuration and report unknown keys in config files",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# docwatcher configuration\n%s", data)

	case "toml":
		data, err := gotoml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# docwatcher configuration\n%s", data)

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v, err := am.GetViper()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	var problems []string
	for _, path := range am.ConfigFiles() {
		undecoded, err := unknownKeys(path)
		if err != nil {
			return err
		}
		for _, key := range undecoded {
			problems = append(problems, fmt.Sprintf("%s: unknown key %q", path, key))
		}
	}

	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	if len(problems) > 0 {
		for _, p := range problems {
			pterm.Warning.Println(p)
		}
		return errors.Newf("%d unknown configuration keys", len(problems))
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

// unknownKeys decodes path into Config and returns keys no field claims
func unknownKeys(path string) ([]string, error) {
	var cfg am.Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	return keys, nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintf(out, "  2. [SYSTEM]   %s\n", am.SystemConfigPath)
	fmt.Fprintf(out, "  3. [PROJECT]  ./%s (searches up directories)\n", am.ConfigFileName)
	fmt.Fprintln(out, "  4. [FLAG]     --config")
	fmt.Fprintln(out, "  5. [ENV]      WATCH_FOLDER, PAPERLESS_CONSUME_FOLDER, LOG_LEVEL, DOCWATCHER_*")
	fmt.Fprintln(out)

	files := am.ConfigFiles()
	if len(files) == 0 {
		fmt.Fprintln(out, "No config files found, using defaults and environment")
	} else {
		fmt.Fprintln(out, "Config files in use:")
		for _, f := range files {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}

	var envs []string
	for _, name := range am.EnvVarNames() {
		if _, ok := os.LookupEnv(name); ok {
			envs = append(envs, name)
		}
	}
	if len(envs) > 0 {
		fmt.Fprintf(out, "\nEnvironment overrides: %s\n", strings.Join(envs, ", "))
	}
	return nil
}
