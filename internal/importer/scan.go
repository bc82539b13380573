package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/casterly-dev/casterly/internal/logger"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/statement"
	"github.com/casterly-dev/casterly/internal/store"
)

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Feed routes statement files to an account. Files whose name starts with
// Name (case-insensitive) belong to the feed.
type Feed struct {
	Name      string
	Entity    model.Entity
	AccountID int64
	Options   statement.Options
}

// importDir is the subdirectory for statement CSVs.
const importDir = "import"

// processedDir is the subdirectory for imported CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// MatchFeed returns the feed a file belongs to. The longest matching name wins.
func MatchFeed(fileName string, feeds []Feed) (Feed, bool) {
	name := strings.ToLower(fileName)
	var (
		best  Feed
		found bool
	)
	for _, f := range feeds {
		prefix := strings.ToLower(f.Name)
		if prefix == "" || !strings.HasPrefix(name, prefix) {
			continue
		}
		if !found || len(prefix) > len(best.Name) {
			best, found = f, true
		}
	}
	return best, found
}

// DirResult is the outcome for one file of ImportDir.
type DirResult struct {
	File    FileInfo
	Feed    string
	Run     store.ImportRun
	Skipped bool
	Err     error
}

// ImportDir imports every CSV in <root>/import/ that matches a feed and moves
// it to import/processed/. Files without a feed are skipped and left in
// place; a failed file is left in place and does not stop the others.
func (im *Importer) ImportDir(ctx context.Context, root string, feeds []Feed) ([]DirResult, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	results := make([]DirResult, 0, len(files))
	for _, f := range files {
		feed, ok := MatchFeed(f.Name, feeds)
		if !ok {
			log.Warn().Str("file", f.Name).Msg("no feed matches file, skipping")
			results = append(results, DirResult{File: f, Skipped: true})
			continue
		}

		r := DirResult{File: f, Feed: feed.Name}
		r.Run, r.Err = im.importPath(ctx, f, feed)
		if r.Err == nil {
			r.Err = MarkProcessed(root, f.Name)
		}
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", f.Name).Msg("import failed")
		}
		results = append(results, r)
	}
	return results, nil
}

func (im *Importer) importPath(ctx context.Context, f FileInfo, feed Feed) (store.ImportRun, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return store.ImportRun{}, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer fh.Close()

	run, _, err := im.ImportFile(ctx, FileParams{
		Reader:    fh,
		FileName:  f.Name,
		AccountID: feed.AccountID,
		Entity:    feed.Entity,
		Options:   feed.Options,
	})
	return run, err
}
