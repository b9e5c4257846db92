// Package dailyops runs the daily operations cycle: a handful of
// local collectors gathered in parallel, followed by a fixed sequence
// of dispatcher commands that turn the raw data into summaries.
package dailyops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nerva/internal/logging"
)

var log = logging.New("dailyops")

// CollectTODOs scans notesDir for markdown files containing TODO
// markers, returning one string per match prefixed with the file
// name.
func CollectTODOs(notesDir string) ([]string, error) {
	if _, err := os.Stat(notesDir); os.IsNotExist(err) {
		log.Warn("notes directory not found", "dir", notesDir)
		return nil, nil
	}

	var todos []string
	err := filepath.WalkDir(notesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Warn("could not read notes file", "path", path, "error", readErr)
			return nil
		}
		for _, line := range strings.Split(string(data), "\n") {
			trimmed := strings.TrimSpace(line)
			upper := strings.ToUpper(trimmed)
			if strings.Contains(upper, "TODO:") || strings.Contains(upper, "TODO") || strings.Contains(trimmed, "- [ ]") {
				todos = append(todos, fmt.Sprintf("%s: %s", filepath.Base(path), trimmed))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dailyops: scan notes: %w", err)
	}
	return todos, nil
}

// CollectSystemEvents tails the last 20 lines of the 5 most recently
// modified *.log files under logDir, capped at 100 lines total.
func CollectSystemEvents(logDir string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if os.IsNotExist(err) {
		log.Warn("log directory not found", "dir", logDir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dailyops: read log dir: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(logDir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.After(files[j].modTime) })
	if len(files) > 5 {
		files = files[:5]
	}

	var events []string
	for _, f := range files {
		lines, err := tailLines(f.path, 20)
		if err != nil {
			log.Warn("could not read log file", "path", f.path, "error", err)
			continue
		}
		name := filepath.Base(f.path)
		for _, line := range lines {
			events = append(events, fmt.Sprintf("%s: %s", name, line))
		}
	}
	if len(events) > 100 {
		events = events[:100]
	}
	return events, nil
}

func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// ClusterStatus is the shape returned by CollectClusterStatus.
type ClusterStatus struct {
	DashboardURL string         `json:"dashboard_url"`
	Reachable    bool           `json:"reachable"`
	NodeSummary  map[string]int `json:"node_summary"`
	LastChecked  int64          `json:"last_checked"`
}

// CollectClusterStatus asks a local dashboard endpoint for node
// availability, returning a zero-value, unreachable status rather
// than an error if the dashboard cannot be reached — a daily ops
// cycle should never fail outright because one optional service is
// down.
func CollectClusterStatus(ctx context.Context, dashboardURL string) ClusterStatus {
	status := ClusterStatus{
		DashboardURL: dashboardURL,
		NodeSummary:  map[string]int{"total": 0, "available": 0},
		LastChecked:  time.Now().Unix(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(dashboardURL, "/")+"/api/dashboard", nil)
	if err != nil {
		return status
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Debug("cluster dashboard request failed", "url", dashboardURL, "error", err)
		return status
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status
	}

	var body struct {
		OllamaNodes []map[string]any `json:"ollama_nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return status
	}

	available := 0
	for _, n := range body.OllamaNodes {
		if v, ok := n["available"].(bool); !ok || v {
			available++
		}
	}
	status.Reachable = true
	status.NodeSummary = map[string]int{"total": len(body.OllamaNodes), "available": available}
	return status
}

// Snapshot is the aggregate result of running every collector.
type Snapshot struct {
	TODOs         []string
	SystemEvents  []string
	ClusterStatus ClusterStatus
}

// CollectAll runs every collector concurrently via an errgroup and
// aggregates their results. A single collector's failure does not
// abort the others; only a hard error (not the soft not-found cases
// the collectors already tolerate) propagates.
func CollectAll(ctx context.Context, notesDir, logDir, dashboardURL string) (Snapshot, error) {
	var snapshot Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		todos, err := CollectTODOs(notesDir)
		if err != nil {
			return err
		}
		snapshot.TODOs = todos
		return nil
	})
	g.Go(func() error {
		events, err := CollectSystemEvents(logDir)
		if err != nil {
			return err
		}
		snapshot.SystemEvents = events
		return nil
	})
	g.Go(func() error {
		snapshot.ClusterStatus = CollectClusterStatus(gctx, dashboardURL)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("dailyops: collect: %w", err)
	}
	return snapshot, nil
}
