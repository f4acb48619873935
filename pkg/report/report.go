package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"neuronook-server/pkg/analysis"
	"neuronook-server/pkg/config"
	"neuronook-server/pkg/errors"
)

// Writer renders analysis records into the output directory. All output
// is derived from the record alone, so re-running a report over the same
// record reproduces the same files.
type Writer struct {
	logger *logrus.Entry
	cfg    config.OutputConfig
}

// NewWriter creates a report writer for the configured output directory
func NewWriter(logger *logrus.Logger, cfg config.OutputConfig) *Writer {
	return &Writer{
		logger: logger.WithField("component", "report_writer"),
		cfg:    cfg,
	}
}

// WriteAll writes every configured artifact for the record and returns
// the paths written
func (w *Writer) WriteAll(record *analysis.AnalysisRecord) ([]string, error) {
	var written []string

	path, err := w.WriteRecord(record)
	if err != nil {
		return written, err
	}
	written = append(written, path)

	if w.cfg.WriteSummary {
		path, err = w.WriteSummary(record)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if w.cfg.WriteTrend {
		path, err = w.WriteTrend(record)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if w.cfg.WriteTranscript {
		path, err = w.WriteTranscript(record)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	w.logger.WithFields(logrus.Fields{
		"source": record.Source,
		"files":  len(written),
	}).Info("Report artifacts written")

	return written, nil
}

// WriteRecord writes the full analysis record as JSON
func (w *Writer) WriteRecord(record *analysis.AnalysisRecord) (string, error) {
	var (
		data []byte
		err  error
	)
	if w.cfg.PrettyJSON {
		data, err = json.MarshalIndent(record, "", "  ")
	} else {
		data, err = json.Marshal(record)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal analysis record")
	}

	path := w.outputPath(record.Source, ".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("failed to write record file: %s", path))
	}
	return path, nil
}

// WriteSummary writes the human-readable session summary
func (w *Writer) WriteSummary(record *analysis.AnalysisRecord) (string, error) {
	path := w.outputPath(record.Source, "_summary.txt")
	if err := os.WriteFile(path, []byte(RenderSummary(record)), 0644); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("failed to write summary file: %s", path))
	}
	return path, nil
}

// trendSeries is the chart-friendly shape of the sentiment trend
type trendSeries struct {
	Source     string    `json:"source"`
	Timestamps []float64 `json:"timestamps"`
	Scores     []float64 `json:"scores"`
}

// WriteTrend writes the sentiment trend as parallel series for charting
func (w *Writer) WriteTrend(record *analysis.AnalysisRecord) (string, error) {
	series := trendSeries{
		Source:     record.Source,
		Timestamps: make([]float64, 0, len(record.SentimentTrend)),
		Scores:     make([]float64, 0, len(record.SentimentTrend)),
	}
	for _, point := range record.SentimentTrend {
		series.Timestamps = append(series.Timestamps, point.Timestamp)
		series.Scores = append(series.Scores, point.Score)
	}

	data, err := json.MarshalIndent(series, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal sentiment trend")
	}

	path := w.outputPath(record.Source, "_trend.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("failed to write trend file: %s", path))
	}
	return path, nil
}

// WriteTranscript writes the annotated transcript with per-segment tags
func (w *Writer) WriteTranscript(record *analysis.AnalysisRecord) (string, error) {
	path := w.outputPath(record.Source, "_transcript.txt")
	if err := os.WriteFile(path, []byte(RenderTranscript(record)), 0644); err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("failed to write transcript file: %s", path))
	}
	return path, nil
}

func (w *Writer) outputPath(source, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(w.cfg.Directory, base+suffix)
}

// RenderSummary builds the session summary text
func RenderSummary(record *analysis.AnalysisRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session Analysis Summary: %s\n", record.Source)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 26+len(record.Source)))

	fmt.Fprintf(&b, "Segments analyzed:   %d\n", record.SegmentCount())
	fmt.Fprintf(&b, "Session duration:    %.1fs\n", record.SessionDuration())
	fmt.Fprintf(&b, "Total words:         %d\n", record.TotalWords)
	fmt.Fprintf(&b, "Speech rate:         %.1f words/min\n", record.WordsPerMinute)
	fmt.Fprintf(&b, "Questions asked:     %d\n", record.QuestionCount)
	fmt.Fprintf(&b, "Filler words:        %d\n\n", record.FillerCount)

	fmt.Fprintf(&b, "Overall sentiment:   %s (%.2f)\n", SentimentLabel(record.MeanSentiment), record.MeanSentiment)

	fmt.Fprintf(&b, "Silence gaps:        %d (total %.1fs", len(record.Gaps), record.TotalSilence)
	if longest, ok := analysis.LongestGap(record.Gaps); ok {
		shortest, _ := analysis.ShortestGap(record.Gaps)
		fmt.Fprintf(&b, ", longest %.1fs, shortest %.1fs", longest.Duration, shortest.Duration)
	}
	b.WriteString(")\n\n")

	writeTopLabels(&b, "Prominent symptom indicators", record.SymptomFrequency)
	writeTopLabels(&b, "Prominent discussion topics", record.ThemeFrequency)

	if len(record.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings: %d segment(s) analyzed with degraded scoring\n", len(record.Warnings))
	}

	return b.String()
}

// RenderTranscript builds the annotated transcript text
func RenderTranscript(record *analysis.AnalysisRecord) string {
	var b strings.Builder

	for _, seg := range record.Segments {
		fmt.Fprintf(&b, "[%7.2fs - %7.2fs] %s\n", seg.Segment.StartTime, seg.Segment.EndTime, seg.Segment.Text)

		tags := append(append([]string{}, seg.Annotation.SymptomTags...), seg.Annotation.ThemeTags...)
		if len(tags) > 0 {
			fmt.Fprintf(&b, "%21s tags: %s\n", "", strings.Join(tags, ", "))
		}

		sentiment := fmt.Sprintf("%.2f", seg.Annotation.SentimentScore)
		if seg.Annotation.SentimentDegraded {
			sentiment += " (degraded)"
		}
		fmt.Fprintf(&b, "%21s sentiment: %s\n", "", sentiment)
	}

	for _, gap := range record.Gaps {
		fmt.Fprintf(&b, "[%7.2fs - %7.2fs] -- silence (%.1fs) --\n", gap.GapStart, gap.GapEnd, gap.Duration)
	}

	return b.String()
}

// SentimentLabel maps a score to its verbal label. Scores within 0.05 of
// zero read as neutral.
func SentimentLabel(score float64) string {
	switch {
	case score > 0.05:
		return "positive"
	case score < -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

// writeTopLabels appends the two most frequent labels, ties broken
// alphabetically so output is stable
func writeTopLabels(b *strings.Builder, title string, freq map[string]int) {
	if len(freq) == 0 {
		fmt.Fprintf(b, "%s: none detected\n", title)
		return
	}

	labels := make([]string, 0, len(freq))
	for label := range freq {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if freq[labels[i]] != freq[labels[j]] {
			return freq[labels[i]] > freq[labels[j]]
		}
		return labels[i] < labels[j]
	})

	if len(labels) > 2 {
		labels = labels[:2]
	}

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s (%d)", label, freq[label]))
	}
	fmt.Fprintf(b, "%s: %s\n", title, strings.Join(parts, ", "))
}
