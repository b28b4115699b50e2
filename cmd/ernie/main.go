// Command ernie translates text with Baidu's ERNIE models.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/ernie"
	"github.com/ZaguanLabs/ernie/cache"
	"github.com/ZaguanLabs/ernie/plugin"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = ernie.Version
	commit    = ernie.GitCommit
	buildDate = ernie.BuildDate
)

// defaultModel is used when neither a flag nor the params file names one.
const defaultModel = "ernie-lite-8k"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ernie", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	targetLang := fs.String("lang", "", "Target language (e.g., en, Simplified Chinese)")
	sourceLang := fs.String("source", "auto", "Source language, passed through to the host contract")
	apiKey := fs.String("api-key", "", "API key (default: ERNIE_API_KEY env)")
	secretKey := fs.String("secret-key", "", "Secret key (default: ERNIE_SECRET_KEY env)")
	model := fs.String("model", "", "Model endpoint name (default: "+defaultModel+")")
	paramsFile := fs.String("params", "", "YAML file with parameter bag entries")
	temperature := fs.String("temperature", "", "Sampling temperature, (0, 1.0]")
	topP := fs.String("top-p", "", "Nucleus sampling, [0.0, 1.0]")
	penalty := fs.String("penalty-score", "", "Repetition penalty, [1.0, 2.0]")
	systemPrompt := fs.String("system-prompt", "", "System prompt")
	prompts := fs.String("prompts", "", "Prompt template as a JSON array of messages")
	requestURL := fs.String("request-url", "", "Chat endpoint base URL")
	authURL := fs.String("auth-url", "", "OAuth token endpoint")
	tokenFile := fs.String("token-file", "", "Access token cache file (default: host plugin dir)")
	resultsFile := fs.String("results-file", "", "JSON file to load and save finished translations")
	redisURL := fs.String("redis-url", "", "Redis URL for a shared result cache")
	timeout := fs.Duration("timeout", 0, "HTTP timeout (0: none)")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	dryRun := fs.Bool("dry-run", false, "Print the request payload without calling the API")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	verbose := fs.Bool("verbose", false, "Log debug output to stderr")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Handle -o alias for --output
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", ernie.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Parameter bag: params file, then environment, then flags.
	bag := map[string]string{}
	if *paramsFile != "" {
		fileBag, err := loadParams(*paramsFile)
		if err != nil {
			return err
		}
		bag = fileBag
	}
	setIf(bag, ernie.ParamAPIKey, os.Getenv("ERNIE_API_KEY"))
	setIf(bag, ernie.ParamSecretKey, os.Getenv("ERNIE_SECRET_KEY"))
	setIf(bag, ernie.ParamAPIKey, *apiKey)
	setIf(bag, ernie.ParamSecretKey, *secretKey)
	setIf(bag, ernie.ParamModel, *model)
	setIf(bag, ernie.ParamTemperature, *temperature)
	setIf(bag, ernie.ParamTopP, *topP)
	setIf(bag, ernie.ParamPenaltyScore, *penalty)
	setIf(bag, ernie.ParamSystemPrompt, *systemPrompt)
	setIf(bag, ernie.ParamPrompts, *prompts)
	setIf(bag, ernie.ParamRequestURL, *requestURL)
	if bag[ernie.ParamModel] == "" {
		bag[ernie.ParamModel] = defaultModel
	}

	input, err := readInput(fs.Args())
	if err != nil {
		return err
	}

	if *dryRun {
		return runDryRun(input, *targetLang, bag, stdout)
	}

	path := *tokenFile
	if path == "" {
		if path, err = plugin.DefaultTokenPath(); err != nil {
			return err
		}
	}
	// The core never creates directories; as the host, we do.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}

	cfg := plugin.Config{
		TokenPath: path,
		AuthURL:   *authURL,
		Timeout:   *timeout,
		Logger:    logger,
	}

	var memory *cache.InMemoryCache
	switch {
	case *redisURL != "":
		rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{URL: *redisURL, Logger: logger})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rc.Close()
		cfg.Cache = rc
	case *resultsFile != "":
		memory = cache.NewInMemoryCache(0)
		res, err := cache.NewImporter(memory).ImportFromFile(*resultsFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return fmt.Errorf("loading results file: %w", err)
		default:
			logger.Debug("loaded results file", "imported", res.Imported, "failed", res.Failed)
		}
		cfg.Cache = memory
	}

	translator, err := plugin.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := translator.Translate(context.Background(), input, *sourceLang, *targetLang, "", bag)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if memory != nil {
		meta := map[string]string{"model": bag[ernie.ParamModel]}
		if err := cache.NewExporter(memory).ExportToFile(*resultsFile, meta); err != nil {
			return fmt.Errorf("saving results file: %w", err)
		}
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if *jsonOutput {
		return outputJSON(out, JSONOutput{
			Translation: result,
			Model:       bag[ernie.ParamModel],
			TargetLang:  *targetLang,
			ElapsedMs:   elapsed.Milliseconds(),
		})
	}

	fmt.Fprintln(out, result)
	logger.Debug("done", "elapsed", elapsed.Round(time.Millisecond))
	return nil
}

// readInput reads the text from the first argument file or from stdin.
func readInput(args []string) (string, error) {
	var data []byte
	var err error
	if len(args) == 0 {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
	}

	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return "", fmt.Errorf("no input text")
	}
	return text, nil
}

// loadParams reads a YAML mapping of bag entries. Scalars are used as
// written; a structured prompts value is re-encoded as JSON.
func loadParams(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("reading params file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing params file: %w", err)
	}

	bag := make(map[string]string, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			bag[key] = val
		case []interface{}, map[string]interface{}:
			enc, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("params file: %s: %w", key, err)
			}
			bag[key] = string(enc)
		default:
			bag[key] = fmt.Sprint(val)
		}
	}
	return bag, nil
}

func setIf(bag map[string]string, key, value string) {
	if value != "" {
		bag[key] = value
	}
}

// runDryRun prints the rendered payload without resolving a token.
func runDryRun(input, targetLang string, bag map[string]string, stdout io.Writer) error {
	req, err := ernie.Build(input, targetLang, bag)
	if err != nil {
		return err
	}

	type dryRunOutput struct {
		Endpoint string         `json:"endpoint"`
		Payload  *ernie.Payload `json:"payload"`
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(dryRunOutput{
		Endpoint: ernie.Endpoint(req.Params.RequestURL, req.Params.Model, "<token>"),
		Payload:  req.Payload,
	})
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Translation string `json:"translation"`
	Model       string `json:"model"`
	TargetLang  string `json:"target_lang"`
	ElapsedMs   int64  `json:"elapsed_ms"`
}

// outputJSON writes the result as JSON.
func outputJSON(w io.Writer, out JSONOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
