// services/word_service.go
package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/persistence"
)

var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// DefaultWords is used when neither a database nor a word file provides a vocabulary.
var DefaultWords = []string{
	"apple", "airplane", "anchor", "banana", "bicycle", "bridge", "butterfly", "cactus",
	"camera", "candle", "castle", "cat", "clock", "cloud", "crown", "dog", "dragon",
	"drum", "elephant", "feather", "fish", "flower", "giraffe", "guitar", "hammer",
	"house", "ice cream", "island", "kite", "ladder", "lighthouse", "moon", "mountain",
	"octopus", "owl", "penguin", "pizza", "rainbow", "robot", "rocket", "scissors",
	"snowman", "spider", "sun", "sword", "tree", "umbrella", "volcano", "whale", "window",
}

// WordService hands out random words from a fixed vocabulary.
type WordService struct {
	words []string
	rng   *rand.Rand
	mutex sync.Mutex
}

func NewWordService(words []string) (*WordService, error) {
	cleaned := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, w)
	}
	if len(cleaned) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return &WordService{
		words: cleaned,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (s *WordService) Size() int {
	return len(s.words)
}

func (s *WordService) RandomWord() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.words[s.rng.Intn(len(s.words))]
}

// RandomWords returns n distinct words, or the whole vocabulary shuffled when it
// holds fewer than n.
func (s *WordService) RandomWords(n int) []string {
	if n <= 0 {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if n > len(s.words) {
		n = len(s.words)
	}
	out := make([]string, 0, n)
	for _, i := range s.rng.Perm(len(s.words))[:n] {
		out = append(out, s.words[i])
	}
	return out
}

// LoadVocabulary picks the first non-empty vocabulary from the database source,
// the word file and DefaultWords, in that order.
func LoadVocabulary(ctx context.Context, source persistence.WordSource, file string) ([]string, error) {
	if source != nil {
		words, err := source.LoadWords(ctx)
		switch {
		case err == nil:
			logger.Log.Infof("Loaded %d words from database", len(words))
			return words, nil
		case errors.Is(err, persistence.ErrNoWords):
			logger.Log.Warn("Word table is empty, falling back")
		default:
			return nil, fmt.Errorf("load words from database: %w", err)
		}
	}

	if file != "" {
		words, err := ReadWordFile(file)
		if err != nil {
			return nil, err
		}
		if len(words) > 0 {
			logger.Log.Infof("Loaded %d words from %s", len(words), file)
			return words, nil
		}
		logger.Log.Warnf("Word file %s is empty, falling back", file)
	}

	return DefaultWords, nil
}

// ReadWordFile reads one word per line, skipping blank lines and # comments.
func ReadWordFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word file: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word file %s: %w", path, err)
	}
	return words, nil
}
