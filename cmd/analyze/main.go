package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/livecommerce/stream-analyzer/internal/analysis"
	"github.com/livecommerce/stream-analyzer/internal/config"
	"github.com/livecommerce/stream-analyzer/internal/loader"
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		dataPath     = flag.String("data", "", "Engagement timeseries file (.csv or .xlsx)")
		commentsPath = flag.String("comments", "", "Comment log file (.csv or .xlsx)")
		eventsPath   = flag.String("events", "", "Timeline events JSON")
		outPath      = flag.String("out", "", "Write the report JSON here (default: report_<time>.json)")
		percentile   = flag.Float64("percentile", 0, "Peak percentile override")
		synthetic    = flag.Bool("synthetic-timeline", false, "Label peaks with typical scene types when no events are given")
		debug        = flag.Bool("debug", false, "Debug logging")
	)
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -data metrics.csv [-comments comments.csv] [-events events.json]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		logrus.Debug("Loaded .env")
	}
	logrus.SetLevel(logrus.WarnLevel)
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	opts := analysis.OptionsFromConfig(cfg)
	if *percentile > 0 {
		opts.Percentile = *percentile
	}
	opts.SyntheticTimeline = opts.SyntheticTimeline || *synthetic

	in, err := readInputs(*dataPath, *commentsPath, *eventsPath)
	if err != nil {
		logrus.Fatalf("Failed to read inputs: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := analysis.Analyze(ctx, in, opts)
	if err != nil {
		logrus.Fatalf("Analysis failed: %v", err)
	}

	printSummary(result)

	target := *outPath
	if target == "" {
		target = fmt.Sprintf("report_%s.json", result.GeneratedAt.Format("20060102_150405"))
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logrus.Fatalf("Failed to encode report: %v", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		logrus.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("\nReport saved to: %s\n", target)
}

func readInputs(dataPath, commentsPath, eventsPath string) (analysis.Inputs, error) {
	in := analysis.Inputs{SessionID: strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))}

	var err error
	if in.Metrics, err = loader.LoadFile(dataPath); err != nil {
		return in, err
	}
	if commentsPath != "" {
		if in.Comments, err = loader.LoadFile(commentsPath); err != nil {
			return in, err
		}
	}
	if eventsPath != "" {
		raw, err := os.ReadFile(eventsPath)
		if err != nil {
			return in, err
		}
		if in.Events, err = loader.ParseEvents(raw); err != nil {
			return in, err
		}
	}
	return in, nil
}

func printSummary(result *models.AnalysisReport) {
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("LIVE COMMERCE ANALYSIS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Println("\nSummary:")
	keys := make([]string, 0, len(result.SummaryStats))
	for k := range result.SummaryStats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("   %-24s %.3f\n", k+":", result.SummaryStats[k])
	}

	fmt.Println("\nPeaks:")
	for _, metric := range models.Metrics {
		peaks, ok := result.PeakAnalysis[metric]
		if !ok {
			continue
		}
		fmt.Printf("   %s\n", metric)
		for _, p := range peaks {
			fmt.Printf("      %3d min  +%-8.0f %s\n", p.Minute, p.Increase, p.EventDescription)
		}
	}

	fmt.Printf("\nComments (%d):\n", result.CommentAnalysis.Total)
	for _, c := range models.Categories {
		fmt.Printf("   %-16s %d\n", c.Label()+":", result.CommentAnalysis.Categories[c])
	}

	if len(result.CommentAnalysis.TopKeywords) > 0 {
		var words []string
		for i, kw := range result.CommentAnalysis.TopKeywords {
			if i >= 10 {
				break
			}
			words = append(words, fmt.Sprintf("%s(%d)", kw.Keyword, kw.Count))
		}
		fmt.Printf("\nTop keywords: %s\n", strings.Join(words, " "))
	}

	if rec := result.Recommendations; rec != nil {
		for _, section := range []struct {
			title string
			items []string
		}{
			{"Good points", rec.GoodPoints},
			{"Improvements", rec.Improvements},
			{"Next actions", rec.NextActions},
		} {
			if len(section.items) == 0 {
				continue
			}
			fmt.Printf("\n%s:\n", section.title)
			for _, item := range section.items {
				fmt.Printf("   - %s\n", item)
			}
		}
	}
}
