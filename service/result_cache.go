package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/log"
	"github.com/ludo-technologies/exprlint/internal/version"
	"github.com/vmihailenco/msgpack/v5"
)

// Bump when cachedResult changes shape
const resultCacheSchemaVersion uint16 = 1

// CacheKey identifies one analysis: source content plus the settings that
// can change its findings
type CacheKey [sha256.Size]byte

// ResultCache stores per-file analysis results on disk, keyed by content and
// configuration. A nil cache is valid and never hits. Safe for concurrent use.
type ResultCache struct {
	mu          sync.RWMutex
	dir         string
	fingerprint string
}

// cachedSuggestion packs positions into fixed-width integers
type cachedSuggestion struct {
	Line     uint32
	Column   uint32
	Instance uint32
	Message  string
	Severity string
	Rule     string
	Label    string
	Fixable  bool
	AltForms bool
	Original string
}

type cachedResult struct {
	Schema      uint16
	Version     string
	Suggestions []cachedSuggestion
	Errors      []string
}

// NewResultCache opens the cache directory for cfg, creating it if needed.
// Every setting that affects findings goes into the key fingerprint.
func NewResultCache(cfg *config.Config) (*ResultCache, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	dir := cfg.Cache.Directory
	if dir == "" {
		dir = config.DefaultCacheDirectory
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	fingerprint, err := configFingerprint(cfg)
	if err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir, fingerprint: fingerprint}, nil
}

func configFingerprint(cfg *config.Config) (string, error) {
	data, err := json.Marshal(struct {
		Defaults  map[string]interface{}            `json:"defaults"`
		Rules     map[string]map[string]interface{} `json:"rules"`
		Libraries []string                          `json:"libraries"`
		MaxLines  int                               `json:"max_lines"`
		MaxPer    int                               `json:"max_per_rule"`
		Version   string                            `json:"version"`
	}{cfg.Defaults, cfg.Rules, cfg.Libraries, cfg.Analysis.MaxLines, cfg.Analysis.MaxSuggestionsPerRule, version.Version})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint configuration: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Key returns the cache key of source under the cache's configuration
func (c *ResultCache) Key(source []byte) CacheKey {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	if c != nil {
		h.Write([]byte(c.fingerprint))
	}
	var key CacheKey
	copy(key[:], h.Sum(nil))
	return key
}

func (c *ResultCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, hexKey[:2], hexKey+".mp")
}

// Get loads the result stored under key. Entries from another schema or
// tool version count as misses.
func (c *ResultCache) Get(key CacheKey) (*domain.AnalysisResult, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachedResult
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	if payload.Schema != resultCacheSchemaVersion || payload.Version != version.Version {
		return nil, false, nil
	}

	result := &domain.AnalysisResult{
		Suggestions: make([]domain.Suggestion, 0, len(payload.Suggestions)),
		Errors:      payload.Errors,
	}
	for _, s := range payload.Suggestions {
		result.Suggestions = append(result.Suggestions, domain.Suggestion{
			Line:              int(s.Line),
			Column:            int(s.Column),
			InstanceNumber:    int(s.Instance),
			Message:           s.Message,
			Severity:          domain.Severity(s.Severity),
			RuleName:          s.Rule,
			Label:             s.Label,
			Fixable:           s.Fixable,
			HasAlternateForms: s.AltForms,
			Original:          s.Original,
		})
	}
	result.Summary = domain.NewSummary(result.Suggestions)
	return result, true, nil
}

// Put stores result under key. The entry is written to a temporary file and
// renamed into place.
func (c *ResultCache) Put(key CacheKey, result *domain.AnalysisResult) error {
	if c == nil || result == nil {
		return nil
	}

	payload, err := toCachedResult(result)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Debug("failed to remove temp file %s: %v", tmp, rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func toCachedResult(result *domain.AnalysisResult) (*cachedResult, error) {
	payload := &cachedResult{
		Schema:      resultCacheSchemaVersion,
		Version:     version.Version,
		Suggestions: make([]cachedSuggestion, 0, len(result.Suggestions)),
		Errors:      result.Errors,
	}
	for _, s := range result.Suggestions {
		line, err := safecast.Conv[uint32](s.Line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", s.Line, err)
		}
		column, err := safecast.Conv[uint32](s.Column)
		if err != nil {
			return nil, fmt.Errorf("column %d at line %d: %w", s.Column, s.Line, err)
		}
		instance, err := safecast.Conv[uint32](s.InstanceNumber)
		if err != nil {
			return nil, fmt.Errorf("instance %d at line %d: %w", s.InstanceNumber, s.Line, err)
		}
		payload.Suggestions = append(payload.Suggestions, cachedSuggestion{
			Line:     line,
			Column:   column,
			Instance: instance,
			Message:  s.Message,
			Severity: string(s.Severity),
			Rule:     s.RuleName,
			Label:    s.Label,
			Fixable:  s.Fixable,
			AltForms: s.HasAlternateForms,
			Original: s.Original,
		})
	}
	return payload, nil
}

// Clear removes every entry
func (c *ResultCache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
