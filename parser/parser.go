package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/TFMV/codemetrics/syntax"
	"github.com/src-d/enry/v2"
)

// ErrUnsupported is returned for files no enabled frontend can parse.
var ErrUnsupported = errors.New("unsupported language")

// Frontend lowers the source of one language into syntax trees and token streams.
type Frontend interface {
	Language() string
	Extensions() []string
	Parse(path string, src []byte) (*syntax.SourceFile, error)
}

var registry = map[string]func() Frontend{
	LangGo:   func() Frontend { return &GoFrontend{} },
	LangRust: func() Frontend { return &RustFrontend{} },
}

// Languages returns the names of all known frontends.
func Languages() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Detect guesses the language of a file from its name and content. The result
// is lower case, e.g. "go" or "rust", and empty when nothing matched.
func Detect(path string, src []byte) string {
	return strings.ToLower(enry.GetLanguage(filepath.Base(path), src))
}

// Parser dispatches files to the frontend registered for their language.
type Parser struct {
	frontends map[string]Frontend
	byExt     map[string]Frontend
	logger    *slog.Logger
}

// NewParser creates a Parser with the named frontends enabled, or all of them
// when none are named.
func NewParser(logger *slog.Logger, languages ...string) (*Parser, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(languages) == 0 {
		languages = Languages()
	}

	p := &Parser{
		frontends: make(map[string]Frontend),
		byExt:     make(map[string]Frontend),
		logger:    logger,
	}
	for _, lang := range languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		newFrontend, ok := registry[lang]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnsupported, lang)
		}
		fe := newFrontend()
		p.frontends[lang] = fe
		for _, ext := range fe.Extensions() {
			p.byExt[ext] = fe
		}
	}
	return p, nil
}

// Extensions returns the file extensions of the enabled frontends.
func (p *Parser) Extensions() []string {
	exts := make([]string, 0, len(p.byExt))
	for ext := range p.byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// ParseFile reads and parses one source file.
func (p *Parser) ParseFile(path string) (*syntax.SourceFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.ParseSource(path, src)
}

// ParseSource parses src as the file at path. The frontend is chosen by
// extension first and by content detection second.
func (p *Parser) ParseSource(path string, src []byte) (*syntax.SourceFile, error) {
	fe, ok := p.byExt[filepath.Ext(path)]
	if !ok {
		lang := Detect(path, src)
		if fe, ok = p.frontends[lang]; !ok {
			return nil, fmt.Errorf("failed to parse %s: %w", path, ErrUnsupported)
		}
	}

	p.logger.Debug("parsing file", "path", path, "language", fe.Language())
	file, err := fe.Parse(path, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.logger.Debug("parsed file", "path", path, "functions", len(file.Functions))
	return file, nil
}
