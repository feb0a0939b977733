package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"

	"log-analyzer/internal/app"
	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/configs"
	"log-analyzer/internal/shared/svcerrors"
)

// ### Start - fixed configs (no change)
// These values define deterministic test data generation and must match expected results.
// DO NOT MODIFY: Changing these will break the test's deterministic behavior.
const (
	totalLines     = 64000 // Total number of log lines to generate
	malformedEvery = 50    // A malformed line follows every n-th line
	logDate        = "20170630"
)

var (
	paths = []string{
		"/api/v2/banner/25019354",
		"/api/v2/group/1769230/banners",
		"/api/1/photogenic_banners/list/?server_name=WIN7RB4",
		"/export/appinstall_raw/2017-06-29/",
	}
	// request time in milliseconds is base + (line % 7)
	baseMillis = []int{900, 100, 300, 50}
)

// ### End - fixed configs

// main runs the e2e scenario: 001_daily_report
//
// This scenario generates one gzip compressed nginx access log next to an older plain log,
// then starts several analyzer runs concurrently against the same directories, and finally
// serves the result through the report server.
//
// What it tests:
//   - Latest log discovery and gzip decoding
//   - Parse error accounting (2% malformed lines stay below the 25% threshold)
//   - No-overwrite publishing when concurrent runs race for the same report
//   - Report rendering from the template
//   - GET /reports and GET /reports/{date} on the report server
//
// Expected results:
//   - Exactly one run publishes report-2017.06.30.html; the others skip it or fail with ANA_1003
//   - The report lists the four paths ordered by total request time, the banner endpoint first
//   - Each path was counted totalLines / 4 times
func main() {
	// these configs can be changed to run the scenario
	workDir := ".tmp/e2e-001" // Working directory path relative to project root
	parallel := 4             // Number of concurrent analyzer runs
	serverPort := 18080       // Port of the in-process report server
	wantCleanWorkDir := true  // If true, clean up the working directory before running scenario

	projectRoot, err := findProjectRoot()
	if err != nil {
		fail("Could not find go.mod file: %v", err)
	}
	root := filepath.Join(projectRoot, workDir)

	if wantCleanWorkDir {
		fmt.Printf("Cleaning working directory: %s\n", root)
		if err := os.RemoveAll(root); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: Failed to clean working directory: %v\n", err)
		}
		fmt.Println()
	}

	fmt.Println("Starting e2e scenario: 001_daily_report")
	fmt.Printf("WORK_DIR: %s\n", root)
	fmt.Printf("PARALLEL: %d\n", parallel)
	fmt.Printf("TOTAL_LINES: %d\n", totalLines)
	fmt.Println()

	configPath, err := prepareWorkDir(root, serverPort)
	if err != nil {
		fail("Failed to prepare working directory: %v", err)
	}
	cfg, err := configs.LoadConfig(configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}

	// Run the analyzer concurrently
	var wg sync.WaitGroup
	var published, skipped, conflicted, failed int64
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()

			application, err := app.New(cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: Run %d failed to initialize: %v\n", run, err)
				atomic.AddInt64(&failed, 1)
				return
			}
			defer application.Close()

			result, err := application.Run(context.Background())
			switch {
			case err == nil && result.Skipped:
				atomic.AddInt64(&skipped, 1)
			case err == nil:
				atomic.AddInt64(&published, 1)
			case isConflict(err):
				atomic.AddInt64(&conflicted, 1)
			default:
				fmt.Fprintf(os.Stderr, "ERROR: Run %d failed: %v\n", run, err)
				atomic.AddInt64(&failed, 1)
			}
		}(i + 1)
	}
	wg.Wait()

	fmt.Println("=== Runs ===")
	fmt.Printf("Published: %d\n", published)
	fmt.Printf("Skipped: %d\n", skipped)
	fmt.Printf("Conflicted: %d\n", conflicted)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println()

	if published != 1 || failed != 0 {
		fail("expected exactly one published report and no failures")
	}

	// Serve and verify the report
	application, err := app.New(cfg)
	if err != nil {
		fail("Failed to initialize app: %v", err)
	}
	defer application.Close()

	go func() {
		if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("Server failed: %v", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	}()

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := verifyReports(baseURL); err != nil {
		fail("Report verification failed: %v", err)
	}
	fmt.Println("Scenario completed successfully")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

func isConflict(err error) bool {
	svcErr, ok := svcerrors.AsServiceError(err)
	return ok && svcErr.Code == "ANA_1003"
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("reached filesystem root")
		}
		dir = parent
	}
}

// prepareWorkDir writes the logs, the template and an INI config, and returns the config path.
func prepareWorkDir(root string, serverPort int) (string, error) {
	logDir := filepath.Join(root, "log")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", err
	}

	// an older plain log that must be ignored
	older := generateLine(0, "/old") + "\n"
	if err := os.WriteFile(filepath.Join(logDir, "nginx-access-ui.log-20170629"), []byte(older), 0644); err != nil {
		return "", err
	}
	if err := writeGzipLog(filepath.Join(logDir, "nginx-access-ui.log-"+logDate+".gz")); err != nil {
		return "", err
	}

	template := filepath.Join(root, "report.html")
	if err := os.WriteFile(template, []byte("<script>var table = $table_json;</script>"), 0644); err != nil {
		return "", err
	}

	config := fmt.Sprintf(`[log_analyzer]
REPORT_SIZE = 10
REPORT_DIR = %s
LOG_DIR = %s
TEMPLATE = %s
ERRORS_THRESHOLD = 25
LOG_FILE = %s
TIMESTAMP_DIR = %s

[server]
port = %d
`, filepath.Join(root, "reports"), logDir, template, filepath.Join(root, "log_analyzer.log"), root, serverPort)

	configPath := filepath.Join(root, "log_analyzer.cfg")
	return configPath, os.WriteFile(configPath, []byte(config), 0644)
}

func writeGzipLog(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	for i := 0; i < totalLines; i++ {
		line := generateLine(i, paths[i%len(paths)])
		if _, err := io.WriteString(gzipWriter, line+"\n"); err != nil {
			return err
		}
		if i%malformedEvery == 0 {
			if _, err := io.WriteString(gzipWriter, "malformed "+line[:20]+"\n"); err != nil {
				return err
			}
		}
	}
	return gzipWriter.Close()
}

func generateLine(i int, path string) string {
	millis := baseMillis[i%len(baseMillis)] + i%7
	return fmt.Sprintf(`1.196.116.32 -  - [30/Jun/2017:03:50:22 +0300] "GET %s HTTP/1.1" 200 927 "-" "Lynx/2.8.8dev.9 libwww-FM/2.14" "-" "1498697422-2190034393-4708-%d" "dc7161be3" %d.%03d`,
		path, i, millis/1000, millis%1000)
}

func verifyReports(baseURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	var listBody struct {
		Reports []models.ReportInfo `json:"reports"`
	}
	if err := getJSON(client, baseURL+"/reports", &listBody); err != nil {
		return err
	}
	if len(listBody.Reports) != 1 || listBody.Reports[0].Day != "2017.06.30" {
		return fmt.Errorf("unexpected report list: %+v", listBody.Reports)
	}

	resp, err := getWithRetry(client, baseURL+"/reports/2017.06.30")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	tableJSON := strings.TrimSuffix(strings.TrimPrefix(string(page), "<script>var table = "), ";</script>")
	var rows []models.ReportRow
	if err := json.Unmarshal([]byte(tableJSON), &rows); err != nil {
		return fmt.Errorf("report table is not JSON: %w", err)
	}

	wantCount := int64(totalLines / len(paths))
	fmt.Println("=== Report ===")
	for _, row := range rows {
		fmt.Printf("%-60q count=%d time_sum=%.3f time_med=%.3f\n", row.URL, row.Count, row.TimeSum, row.TimeMed)
		if row.Count != wantCount {
			return fmt.Errorf("url %q: count %d, want %d", row.URL, row.Count, wantCount)
		}
	}
	if len(rows) != len(paths) || rows[0].URL != paths[0]+" " {
		return fmt.Errorf("unexpected report rows: %+v", rows)
	}
	return nil
}

func getJSON(client *http.Client, url string, target any) error {
	resp, err := getWithRetry(client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// getWithRetry waits for the server to come up.
func getWithRetry(client *http.Client, url string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 20; attempt++ {
		resp, err := client.Get(url)
		if err == nil {
			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
			}
			return resp, nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	return nil, lastErr
}
