package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/ai/gemini"
	"github.com/spigell/cv-matcher/internal/document"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/match"
	"github.com/spigell/cv-matcher/internal/report"
	"github.com/spigell/cv-matcher/internal/secrets"
	"github.com/spigell/cv-matcher/internal/taxonomy"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowJSON      = "Show full result as JSON"
	PromptWriteCSV      = "Write CSV report"
	PromptWriteMarkdown = "Write Markdown report"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowJSON, PromptWriteCSV, PromptWriteMarkdown, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match <cv-file> <jd-file>",
	Short: "Score a CV against a job description",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("no-prompt", "y", false, "print the result as JSON and exit without the action menu")
}

func runMatch(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the cv-matcher", zap.String("version", version))

	cvText, err := document.ExtractText(args[0])
	if err != nil {
		logger.Fatal("reading the cv", zap.Error(err))
	}

	jdText, err := document.ExtractText(args[1])
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	cvSkills := taxonomy.Extract(cvText)
	jdSkills := taxonomy.Extract(jdText)

	logger.Info("extracted skills",
		zap.Int("cv_skills", len(cvSkills)),
		zap.Int("jd_skills", len(jdSkills)),
	)

	logger.Debug("cv profile",
		zap.Strings("skills", cvSkills),
		zap.Int("stated_experience_years", taxonomy.ExtractExperienceYears(cvText)),
		zap.Strings("education", taxonomy.ExtractEducation(cvText)),
	)

	scorer := buildScorer(ctx, config, logger)

	matcher, err := match.NewMatcher(scorer, logger, match.DefaultWeights())
	if err != nil {
		logger.Fatal("creating the matcher", zap.Error(err))
	}

	result := matcher.ComputeMatch(ctx, cvText, jdText, cvSkills, jdSkills)

	logger.Info("analysis complete",
		zap.Float64("match_score", result.MatchScore),
		zap.Int("skills_matched", result.SkillsMatched),
		zap.Int("missing_skills", len(result.MissingSkills)),
		zap.Bool("ai_assisted", result.AIAssisted),
	)

	if cmd.Flag("no-prompt").Value.String() == "true" {
		pretty, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	reportID := report.NewID()
	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleMatchAction(action, result, reportID, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(action string, result *match.Result, reportID string, logger *zap.Logger) error {
	switch action {
	case PromptShowJSON:
		pretty, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptWriteCSV:
		data, err := report.MatchCSV(result)
		if err != nil {
			return fmt.Errorf("render csv report: %w", err)
		}

		filename := fmt.Sprintf("cv-match-%s.csv", reportID)
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			return fmt.Errorf("write csv report: %w", err)
		}

		logger.Info("wrote csv report", zap.String("filename", filename))
		return nil
	case PromptWriteMarkdown:
		filename := fmt.Sprintf("cv-match-%s.md", reportID)
		if err := os.WriteFile(filename, []byte(report.MatchMarkdown(reportID, result)), 0o644); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}

		logger.Info("wrote markdown report", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// buildScorer creates the AI scorer when it is enabled and constructible.
// Every failure path degrades silently to rule-based scoring: the analysis
// must stay usable without external access.
func buildScorer(ctx context.Context, config *Config, logger *zap.Logger) ai.Scorer {
	if config == nil || config.AI == nil || !config.AI.Enabled {
		logger.Info("ai-assisted scoring disabled, using rule-based primitives")
		return nil
	}

	geminiCfg := config.AI.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
		Env:   geminiKeyEnv,
	})
	if err != nil {
		logger.Warn("ai-assisted scoring disabled, falling back to rule-based primitives",
			zap.Error(err),
			zap.String("hint", "set "+geminiKeyEnv+" or the 'ai.gemini.api-key' key in the configuration file"),
		)
		return nil
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Models)
	if err != nil {
		logger.Warn("ai-assisted scoring disabled, falling back to rule-based primitives",
			zap.Error(err),
		)
		return nil
	}

	return gemini.NewScorer(generator, logger, geminiCfg.MaxLogLength)
}
