package pseudofs

import (
	"bufio"
	"os"
	"regexp"
	"sync"

	"github.com/kuserspace/kuserspace/lib/infra"
)

type ExtractErr string

func (err ExtractErr) Error() string {
	return string(err)
}

const (
	ErrNoMatch        ExtractErr = "no pattern match"
	ErrInvalidPattern ExtractErr = "invalid pattern"
)

// Extractor applies text patterns line-by-line to files, caching the
// compiled form of every pattern it sees. Safe for concurrent use; the
// cache carries its own lock.
type Extractor struct {
	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

func NewExtractor() *Extractor {
	return &Extractor{
		cache: make(map[string]*regexp.Regexp, 32),
	}
}

func (x *Extractor) compiled(pattern string) (*regexp.Regexp, error) {
	x.mu.RLock()
	re, ok := x.cache[pattern]
	x.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(ErrInvalidPattern, err.Error())
	}
	x.mu.Lock()
	x.cache[pattern] = re
	x.mu.Unlock()
	return re, nil
}

// CachedPatterns reports how many compiled patterns are retained.
func (x *Extractor) CachedPatterns() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.cache)
}

// PurgeCache drops every compiled pattern.
func (x *Extractor) PurgeCache() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.cache = make(map[string]*regexp.Regexp, 32)
}

// ExtractLine applies pattern to one line and returns the first
// capture group, or the whole match when the pattern has no group.
// ErrNoMatch when the line does not match.
func (x *Extractor) ExtractLine(line, pattern string) (string, error) {
	re, err := x.compiled(pattern)
	if err != nil {
		return "", err
	}
	groups := re.FindStringSubmatch(line)
	switch {
	case groups == nil:
		return "", infra.WrapErrorStack(ErrNoMatch)
	case len(groups) > 1:
		return groups[1], nil
	}
	return groups[0], nil
}

// ExtractValues scans the file at path line-by-line and collects the
// extraction of every matching line.
func (x *Extractor) ExtractValues(path, pattern string) ([]string, error) {
	var values []string
	err := x.scan(path, pattern, func(_ string, groups []string) {
		if len(groups) > 1 {
			values = append(values, groups[1])
		} else {
			values = append(values, groups[0])
		}
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// ExtractMap scans the file once and zips the key pattern's matches
// with the value pattern's matches, line-aligned: a line contributes a
// pair only when both patterns match it.
func (x *Extractor) ExtractMap(path, keyPattern, valuePattern string) (map[string]string, error) {
	keyRe, err := x.compiled(keyPattern)
	if err != nil {
		return nil, err
	}
	valRe, err := x.compiled(valuePattern)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, sysErrToBufferErr(err)
	}
	defer func() { _ = f.Close() }()

	pairs := make(map[string]string, 32)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		kGroups := keyRe.FindStringSubmatch(line)
		vGroups := valRe.FindStringSubmatch(line)
		if kGroups == nil || vGroups == nil {
			continue
		}
		key, value := kGroups[0], vGroups[0]
		if len(kGroups) > 1 {
			key = kGroups[1]
		}
		if len(vGroups) > 1 {
			value = vGroups[1]
		}
		pairs[key] = value
	}
	if err = scanner.Err(); err != nil {
		return nil, sysErrToBufferErr(err)
	}
	return pairs, nil
}

// ExtractFunc scans the file and hands every matching line with its
// capture groups to handler.
func (x *Extractor) ExtractFunc(path, pattern string, handler func(line string, groups []string)) error {
	if handler == nil {
		return infra.WrapErrorStackWithMessage(ErrInvalidOperation, "nil extract handler")
	}
	return x.scan(path, pattern, handler)
}

func (x *Extractor) scan(path, pattern string, handler func(line string, groups []string)) error {
	re, err := x.compiled(pattern)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return sysErrToBufferErr(err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if groups := re.FindStringSubmatch(line); groups != nil {
			handler(line, groups)
		}
	}
	return sysErrToBufferErr(scanner.Err())
}
