package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/feedkit/feed-responder/internal/ai"
	"github.com/feedkit/feed-responder/internal/ai/gemini"
	"github.com/feedkit/feed-responder/internal/driver"
	"github.com/feedkit/feed-responder/internal/feed"
	"github.com/feedkit/feed-responder/internal/filtering"
	"github.com/feedkit/feed-responder/internal/logger"
	"github.com/feedkit/feed-responder/internal/match"
	"github.com/feedkit/feed-responder/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes              = "Yes"
	PromptNo               = "No"
	PromptBack             = "back"
	PromptReportByAuthors  = "Report by authors"
	PromptManualEngage     = "Engage posts in manual mode"
	PromptAppendToEngaged  = "Append all posts to engaged file"
	PromptPostsToFile      = "Dump posts to file"
	defaultEngagePause     = 2 * time.Second
	defaultFallbackComment = "Interesting, thanks for sharing!"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo, PromptReportByAuthors, PromptManualEngage, PromptPostsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the feed-responder main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("do-not-exclude-engaged", "f", false, "do not exclude posts if already engaged")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found relevant posts")
	runCmd.Flags().StringP("engaged-file", "e", "", "special file with already engaged posts. Default is unset.")

	viper.BindPFlag("engaged-file", runCmd.Flags().Lookup("engaged-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the feed-responder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Capture == "" {
		logger.Fatal("capture file is required under capture to evaluate posts")
	}

	criteria := resolveCriteria(config)
	if criteria.IsEmpty() {
		logger.Fatal("at least one criteria field is required",
			zap.String("hint", "set criteria.username, criteria.search-query or criteria.content"),
		)
	}

	engine := match.New(resolveMatchConfig(config.Matcher))

	posts, err := feed.LoadCapture(config.Capture)
	if err != nil {
		logger.Fatal("loading captured posts", zap.Error(err))
	}

	logger.Info("loading captured posts", zap.Int("count", posts.Len()))

	if posts.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no posts in capture"))
		return
	}

	filters := prepareFilters(ctx, cmd, config, engine, criteria, logger)

	filtered, outcomes, err := filters.RunFilters(ctx, posts)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	posts = filtered

	logger.Debug("evaluated posts", zap.Int("outcomes", len(outcomes)))

	if posts.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "could not find a qualifying post"))
		return
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of posts", zap.Int("count", posts.Len()))

		if err := handleAction(ctx, action, logger, config, posts); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if cmd.Flag("auto-approve").Value.String() == "true" {
			return
		}
	}
}

func handleAction(ctx context.Context, action string, logger *zap.Logger, config *Config, posts *feed.Posts) error {
	switch action {
	case PromptYes:
		return engage(ctx, logger, config, posts)
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualEngage:
		return manualEngage(ctx, logger, config, posts)
	case PromptReportByAuthors:
		pretty, _ := json.MarshalIndent(posts.ReportByAuthor(), "", "  ")
		logger.Info(string(pretty), zap.Int("posts count", posts.Len()))
		return nil
	case PromptPostsToFile:
		filename, err := posts.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func resolveCriteria(config *Config) match.Criteria {
	if config.Criteria == nil {
		return match.Criteria{}
	}
	return match.Criteria{
		Username:    strings.TrimSpace(config.Criteria.Username),
		SearchQuery: strings.TrimSpace(config.Criteria.SearchQuery),
		Content:     strings.TrimSpace(config.Criteria.Content),
	}
}

// resolveMatchConfig layers the configuration overrides on the engine
// defaults.
func resolveMatchConfig(cfg *MatcherConfig) match.Config {
	result := match.DefaultConfig()
	if cfg == nil {
		return result
	}

	if cfg.FuzzyThreshold != nil {
		result.FuzzyThreshold = *cfg.FuzzyThreshold
	}
	if cfg.EnableFuzzy != nil {
		result.EnableFuzzy = *cfg.EnableFuzzy
	}
	if len(cfg.SpamPhrases) > 0 {
		result.Lexicon.SpamPhrases = cfg.SpamPhrases
	}
	if len(cfg.TopicGroups) > 0 {
		result.Lexicon.TopicGroups = cfg.TopicGroups
	}
	if len(cfg.CommonHandles) > 0 {
		result.Lexicon.CommonHandles = cfg.CommonHandles
	}
	if len(cfg.HandleAliases) > 0 {
		aliases := make([]match.HandleAlias, 0, len(cfg.HandleAliases))
		for _, alias := range cfg.HandleAliases {
			aliases = append(aliases, match.HandleAlias{
				Handle:    alias.Handle,
				TextWords: alias.TextWords,
			})
		}
		result.Lexicon.HandleAliases = aliases
	}

	return result
}

func manualEngage(ctx context.Context, logger *zap.Logger, config *Config, posts *feed.Posts) error {
	for {
		items := make([]string, 0)

		for _, post := range posts.Items {
			preview := post.Text
			if runes := []rune(preview); len(runes) > 60 {
				preview = string(runes[:60]) + "..."
			}

			items = append(items, fmt.Sprintf("%s @%s / %s / %s", post.ID, post.Handle, preview, post.URL))
		}

		engagedFile := viper.GetString("engaged-file")
		if engagedFile != "" && posts.Len() != 0 {
			items = append(items, PromptAppendToEngaged)
		}

		postPrompt := promptui.Select{
			Label: "Choose a post and press ENTER",
			Items: append(items, PromptBack),
		}

		_, postSelected, err := postPrompt.Run()
		if err != nil {
			return err
		}

		switch postSelected {
		case PromptBack:
			return nil
		case PromptAppendToEngaged:
			engaged, err := feed.GetEngagedPostsFromFile(engagedFile)
			if err != nil {
				if !os.IsNotExist(err) {
					return err
				}
				engaged = &feed.EngagedPosts{}
			}

			engaged.Append(posts.ToEngaged("skip"))

			if err = engaged.ToFile(engagedFile); err != nil {
				return err
			}

			logger.Info("appended to engaged file", zap.String("filename", engagedFile))

			posts.Exclude(feed.PostIDField, engaged.PostIDs())
		default:
			postID := strings.Split(postSelected, " ")[0]

			selected := posts.FindByID(postID)
			if selected == nil {
				return fmt.Errorf("there is no such post id %s", postID)
			}

			if err = engage(ctx, logger, config, &feed.Posts{Items: []*feed.Post{selected}}); err != nil {
				return err
			}

			posts.Exclude(feed.PostIDField, []string{postID})
		}
	}
}

// engage runs the configured actions over the posts through the recording
// driver and persists the engaged history. Real page driving happens outside
// this repository; the recorded plan is the deliverable.
func engage(ctx context.Context, logger *zap.Logger, config *Config, posts *feed.Posts) error {
	actions := []string{driver.ActionLike}
	message := ""
	pause := defaultEngagePause

	if config.Engage != nil {
		if len(config.Engage.Actions) > 0 {
			actions = config.Engage.Actions
		}
		message = config.Engage.Message
		if config.Engage.Pause != "" {
			parsed, err := time.ParseDuration(config.Engage.Pause)
			if err != nil {
				return fmt.Errorf("parsing engage pause: %w", err)
			}
			pause = parsed
		}
	}

	for _, action := range actions {
		if action == driver.ActionComment && message == "" {
			message = defaultFallbackComment
			logger.Warn("falling back to default built-in comment",
				zap.String("hint", "specify message in engage section"),
			)
		}
	}

	recorder := driver.NewRecorder()
	engager := driver.NewEngager(recorder, nil, pause, logger)

	if err := engager.Engage(ctx, posts, actions, message); err != nil {
		return err
	}

	logger.Info("engagement plan recorded",
		zap.Int("posts", posts.Len()),
		zap.Int("driver_calls", len(recorder.Calls())),
	)

	engagedFile := viper.GetString("engaged-file")
	if engagedFile == "" {
		engagedFile = config.EngagedFile
	}
	if engagedFile != "" {
		engaged, err := feed.GetEngagedPostsFromFile(engagedFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("reading engaged file: %w", err)
			}
			engaged = &feed.EngagedPosts{}
		}
		engaged.Append(posts.ToEngaged(strings.Join(actions, ",")))
		if err := engaged.ToFile(engagedFile); err != nil {
			return fmt.Errorf("writing engaged file: %w", err)
		}
		logger.Info("updated engaged file", zap.String("filename", engagedFile))
	}

	return nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai filter is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	matcherLogger := logger.WithFields(log, logger.CommonFields("gemini", generator.Model())...)
	matcherLogger = matcherLogger.With(zap.Float64("minimum_score", cfg.MinimumScore))

	return gemini.NewMatcher(generator, cfg.MinimumScore, cfg.Gemini.MaxLogLength, matcherLogger), nil
}

func prepareFilters(ctx context.Context, cmd *cobra.Command, config *Config, engine *match.Engine, criteria match.Criteria, logger *zap.Logger) *filtering.Filtering {
	ignoreEngaged := false
	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-engaged")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignoreEngaged = true
		}
	}

	engagedFile := viper.GetString("engaged-file")
	if engagedFile == "" {
		engagedFile = config.EngagedFile
	}

	steps := []filtering.Filter{
		filtering.NewQuality(engine, criteria, logger),
		filtering.NewEngagedHistory(&filtering.EngagedHistoryConfig{
			Path:   engagedFile,
			Ignore: ignoreEngaged,
		}, logger),
		filtering.NewRelevance(engine, criteria, logger),
	}

	semantic, err := prepareSemanticFilter(ctx, config.AI, criteria, logger)
	if err != nil {
		logger.Warn("skipping semantic filter", zap.Error(err))
	} else {
		steps = append(steps, semantic)
	}

	return filtering.New(steps, logger)
}

func prepareSemanticFilter(ctx context.Context, config *AIConfig, criteria match.Criteria, logger *zap.Logger) (filtering.Filter, error) {
	if config == nil || !config.Enabled {
		return filtering.NewSemantic(&filtering.SemanticConfig{Enabled: false}, nil), nil
	}

	matcher, err := newAIMatcher(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai matcher: %w", err)
	}

	return filtering.NewSemantic(
		&filtering.SemanticConfig{
			Enabled:      true,
			Provider:     config.Provider,
			MinimumScore: config.MinimumScore,
		},
		&filtering.SemanticDeps{
			Matcher:  matcher,
			Criteria: criteria,
			Logger:   logger,
		},
	), nil
}
