package main

import (
	"flag"

	"github.com/richard-senior/formcast/internal/logger"
	"github.com/richard-senior/formcast/pkg/formcast"
)

func main() {
	// Parse command line flags
	csvPath := flag.String("csv", "", "Match log CSV to import before training (optional if the database is already populated)")
	csvURL := flag.String("url", "", "Remote match log CSV to download and import (cached under the assets directory)")
	standingsURL := flag.String("standings", "", "Standings page URL used to verify the imported team names")
	dbPath := flag.String("db", "", "Override the sqlite database location")
	modelPath := flag.String("model", "", "Override the classifier artifact location")
	logToFile := flag.Bool("logfile", false, "Write logs to the log file instead of the console")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger.SetShowDateTime(true)
	if *logToFile {
		logger.SetLogOutput('f')
	}
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
	if err := formcast.ValidateConfig(config); err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	formcast.UpdateConfig(config)

	store, err := formcast.OpenMatchStore()
	if err != nil {
		logger.Fatal("Failed to open match store", err)
	}

	if *csvURL != "" {
		ds := formcast.NewDatasource()
		csvData, err := ds.FetchMatchesCSV(*csvURL)
		if err != nil {
			logger.Fatal("Failed to fetch match log", err)
		}
		if err := store.ImportCSV(csvData); err != nil {
			logger.Fatal("Failed to import match log", err)
		}
	} else if *csvPath != "" {
		if err := store.ImportCSVFile(*csvPath); err != nil {
			logger.Fatal("Failed to import match log", err)
		}
	}

	if *standingsURL != "" {
		ds := formcast.NewDatasource()
		teams, err := ds.FetchStandingsTeams(*standingsURL)
		if err != nil {
			logger.Fatal("Failed to fetch standings", err)
		}
		formcast.VerifyTeams(store.Snapshot(), teams)
	}

	logger.Info("Building training dataset")
	dataset, err := formcast.BuildDataset(store.Snapshot())
	if err != nil {
		logger.Fatal("Failed to build dataset", err)
	}

	train, test := formcast.TrainTestSplit(dataset)

	logger.Info("Training classifier on", len(train), "examples")
	clf, err := formcast.TrainClassifier(train)
	if err != nil {
		logger.Fatal("Training failed", err)
	}

	if len(test) > 0 {
		report, err := formcast.Evaluate(clf, test)
		if err != nil {
			logger.Fatal("Evaluation failed", err)
		}
		report.LogReport()
	}

	if err := formcast.SaveClassifier(clf, formcast.Config.ModelPath); err != nil {
		logger.Fatal("Failed to save classifier artifact", err)
	}

	logger.Highlight("Model training complete")
}
