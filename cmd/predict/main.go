package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/richard-senior/formcast/internal/logger"
	"github.com/richard-senior/formcast/pkg/formcast"
)

func main() {
	// Parse command line flags
	homeTeam := flag.String("home", "", "Home team name")
	awayTeam := flag.String("away", "", "Away team name")
	dbPath := flag.String("db", "", "Override the sqlite database location")
	modelPath := flag.String("model", "", "Override the classifier artifact location")
	asJSON := flag.Bool("json", false, "Emit the prediction as JSON on stdout")
	listTeams := flag.Bool("teams", false, "List the teams present in the match log and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.DEBUG)
	}

	config := formcast.DefaultFormcastConfig()
	if *dbPath != "" {
		config.DbPath = *dbPath
	}
	if *modelPath != "" {
		config.ModelPath = *modelPath
	}
	formcast.UpdateConfig(config)

	store, err := formcast.OpenMatchStore()
	if err != nil {
		logger.Fatal("Failed to open match store", err)
	}

	if *listTeams {
		for _, team := range store.Snapshot().Teams() {
			fmt.Println(team)
		}
		return
	}

	clf, err := formcast.LoadClassifier(formcast.Config.ModelPath)
	if err != nil {
		logger.Fatal("Failed to load classifier artifact", err)
	}

	predictor, err := formcast.NewPredictor(store, clf)
	if err != nil {
		logger.Fatal("Failed to create predictor", err)
	}

	result, err := predictor.Predict(*homeTeam, *awayTeam)
	if err != nil {
		if formcast.IsInvalidSelection(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Fatal("Prediction failed", err)
	}

	if *asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatal("Failed to marshal result", err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%s vs %s\n", *homeTeam, *awayTeam)
	fmt.Printf("  Prediction:     %s\n", result.PredictedResult)
	fmt.Printf("  Home win:       %.2f%%\n", result.HomeWinProbability)
	fmt.Printf("  Draw:           %.2f%%\n", result.DrawProbability)
	fmt.Printf("  Away win:       %.2f%%\n", result.AwayWinProbability)
	fmt.Printf("  Expected score: %s\n", result.ExpectedScore)
}
