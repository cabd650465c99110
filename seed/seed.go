// Package seed loads catalog and user seed data from YAML and applies it to a library.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/library"
)

var (
	// ErrReadingSeedFailed wraps file system errors of Load.
	ErrReadingSeedFailed = errors.New("reading seed failed")

	// ErrParsingSeedFailed wraps YAML decoding errors.
	ErrParsingSeedFailed = errors.New("parsing seed failed")

	// ErrApplyingSeedFailed is joined with the first entry a library rejected.
	ErrApplyingSeedFailed = errors.New("applying seed failed")
)

//go:embed default.yaml
var defaultSeed []byte

// Document is the content of a seed file.
type Document struct {
	Books []core.NewBook `yaml:"books"`
	Users []core.NewUser `yaml:"users"`
}

// Default returns the built-in sample data.
func Default() Document {
	doc, err := Parse(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(fmt.Sprintf("embedded seed is broken: %v", err))
	}

	return doc
}

// Load reads a seed file. An empty path yields the built-in sample data.
func Load(path string) (Document, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Document{}, errors.Join(ErrReadingSeedFailed, err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc Document
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, errors.Join(ErrParsingSeedFailed, err)
	}

	return doc, nil
}

// Apply adds all books, then all users. It stops at the first rejected entry.
func Apply(ctx context.Context, lib *library.Library, doc Document) error {
	for _, book := range doc.Books {
		if _, err := lib.AddBook(ctx, book); err != nil {
			return errors.Join(ErrApplyingSeedFailed, fmt.Errorf("book %q: %w", book.ISBN, err))
		}
	}

	for _, user := range doc.Users {
		if _, err := lib.AddUser(ctx, user); err != nil {
			return errors.Join(ErrApplyingSeedFailed, fmt.Errorf("user %q: %w", user.UserID, err))
		}
	}

	return nil
}

// Validate applies doc to a scratch library and reports every rejected entry.
func Validate(ctx context.Context, doc Document) error {
	scratch, err := library.New()
	if err != nil {
		return err
	}

	var problems []error

	for i, book := range doc.Books {
		if _, err = scratch.AddBook(ctx, book); err != nil {
			problems = append(problems, fmt.Errorf("books[%d] %q: %w", i, book.ISBN, err))
		}
	}

	for i, user := range doc.Users {
		if _, err = scratch.AddUser(ctx, user); err != nil {
			problems = append(problems, fmt.Errorf("users[%d] %q: %w", i, user.UserID, err))
		}
	}

	return errors.Join(problems...)
}
