package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/logger"
	"github.com/spigell/careerpath/internal/predictor"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a career label for one questionnaire",
	Long: "Runs the same pipeline as POST /questionnaire. Answers are read from a JSON file " +
		"given with --input, otherwise every field is asked interactively.",
	Run: func(cmd *cobra.Command, _ []string) {
		predict(cmd)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringP("input", "i", "", "JSON file with the questionnaire answers")
}

func predict(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	p, err := predictor.Load(config.Model.Path, logger.Named("predictor"))
	if err != nil {
		logger.Fatal("loading prediction artifact", zap.String("path", config.Model.Path), zap.Error(err))
	}

	input, _ := cmd.Flags().GetString("input")

	var raw map[string]any
	if input != "" {
		raw, err = readAnswers(input)
	} else {
		raw, err = askAnswers()
	}
	if err != nil {
		logger.Fatal("reading questionnaire answers", zap.Error(err))
	}

	label, err := p.Predict(raw)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var kindErr predictor.KindError
		if errors.As(err, &kindErr) {
			fields = append(fields, zap.String("kind", string(kindErr.Kind())))
		}
		logger.Fatal("prediction failed", fields...)
	}

	out, _ := json.Marshal(map[string]int{"prediction": label})
	fmt.Println(string(out))
}

func readAnswers(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return raw, nil
}

func askAnswers() (map[string]any, error) {
	raw := make(map[string]any, predictor.FeatureCount)

	for _, field := range predictor.Fields {
		if field == "school_type" {
			selectSchool := promptui.Select{
				Label: "school_type",
				Items: []string{"Public", "Private", "Other"},
			}
			_, value, err := selectSchool.Run()
			if err != nil {
				return nil, err
			}
			raw[field] = value
			continue
		}

		prompt := promptui.Prompt{
			Label:    field,
			Validate: validateNumber,
		}
		value, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		raw[field] = strings.TrimSpace(value)
	}

	return raw, nil
}

func validateNumber(input string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return errors.New("a number is required")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("a finite number is required")
	}
	return nil
}
