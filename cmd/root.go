package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "feed-responder"
)

type Config struct {
	Capture     string          `mapstructure:"capture"`
	EngagedFile string          `mapstructure:"engaged-file"`
	Criteria    *CriteriaConfig `mapstructure:"criteria"`
	Matcher     *MatcherConfig  `mapstructure:"matcher"`
	Engage      *EngageConfig   `mapstructure:"engage"`
	AI          *AIConfig       `mapstructure:"ai"`
}

type CriteriaConfig struct {
	Username    string `mapstructure:"username"`
	SearchQuery string `mapstructure:"search-query"`
	Content     string `mapstructure:"content"`
}

// MatcherConfig overrides the engine defaults. Pointer fields distinguish
// "unset" from zero values.
type MatcherConfig struct {
	FuzzyThreshold *float64            `mapstructure:"fuzzy-threshold"`
	EnableFuzzy    *bool               `mapstructure:"enable-fuzzy"`
	SpamPhrases    []string            `mapstructure:"spam-phrases"`
	TopicGroups    [][]string          `mapstructure:"topic-groups"`
	CommonHandles  []string            `mapstructure:"common-handles"`
	HandleAliases  []HandleAliasConfig `mapstructure:"handle-aliases"`
}

// HandleAliasConfig is one fuzzy-username carve-out: a handle fragment plus
// the words that must all appear in the post text.
type HandleAliasConfig struct {
	Handle    string   `mapstructure:"handle"`
	TextWords []string `mapstructure:"text-words"`
}

type EngageConfig struct {
	Actions []string `mapstructure:"actions"`
	Message string   `mapstructure:"message"`
	Pause   string   `mapstructure:"pause"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	MinimumScore float64       `mapstructure:"minimum-score"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "feed-responder matches captured social posts against targeting criteria and plans engagement on the relevant ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("engaged-file", "FEED_RESPONDER_ENGAGED_FILE"); err != nil {
		log.Fatalf("binding FEED_RESPONDER_ENGAGED_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is feed-responder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
