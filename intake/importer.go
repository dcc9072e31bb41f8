package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/docwatcher/am"
	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/logger"
)

// Importer copies accepted documents into the Paperless consume folder
// under a name that never overwrites an existing file, and writes a
// metadata sidecar next to each copy.
type Importer struct {
	dest    string
	sidecar am.SidecarConfig
	now     func() time.Time
	logger  *zap.SugaredLogger
}

// ImporterOption customizes an Importer
type ImporterOption func(*Importer)

// WithClock replaces time.Now for the sidecar creation date
func WithClock(now func() time.Time) ImporterOption {
	return func(im *Importer) {
		im.now = now
	}
}

// NewImporter creates an importer writing into destFolder
func NewImporter(destFolder string, sidecar am.SidecarConfig, opts ...ImporterOption) *Importer {
	im := &Importer{
		dest:    destFolder,
		sidecar: sidecar,
		now:     time.Now,
		logger:  logger.ComponentLogger("intake.importer"),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Destination returns the consume folder
func (im *Importer) Destination() string {
	return im.dest
}

// Sidecar is the advisory metadata Paperless may pick up next to a document
type Sidecar struct {
	Title   string   `json:"title"`
	Created string   `json:"created"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
}

// Import copies src into the consume folder and returns the path written.
// The source is left untouched. If <name> is taken the copy becomes
// <stem>_1<ext>, <stem>_2<ext> and so on. Directory creation and copy
// failures are marked errors.ErrIO; a failed sidecar is only logged.
func (im *Importer) Import(ctx context.Context, src string) (string, error) {
	log := logger.FromContext(ctx, im.logger)

	if err := os.MkdirAll(im.dest, am.DefaultDirPermissions); err != nil {
		return "", errors.NewIOError(err, "failed to create consume folder %s", im.dest)
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", errors.NewIOError(err, "failed to stat %s", src)
	}

	tmp, err := im.copyToTemp(src)
	if err != nil {
		return "", err
	}

	// Best effort, like a metadata-preserving copy
	if err := os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		log.Debugw("Could not preserve modification time", logger.FieldFile, src, logger.FieldError, err)
	}
	if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
		log.Debugw("Could not preserve file mode", logger.FieldFile, src, logger.FieldError, err)
	}

	dest, err := im.publish(tmp, filepath.Base(src))
	if err != nil {
		os.Remove(tmp)
		return "", errors.NewIOError(err, "failed to place copy of %s", src)
	}

	log.Infow("Copied file to Paperless",
		logger.FieldFile, src,
		logger.FieldDestination, dest,
		logger.FieldSize, info.Size())

	if im.sidecar.Enabled {
		sidecarPath, err := im.writeSidecar(src, dest)
		if err != nil {
			log.Warnw("Could not create metadata file",
				logger.FieldDestination, dest,
				logger.FieldError, err)
		} else {
			log.Debugw("Created metadata file", logger.FieldSidecar, sidecarPath)
		}
	}

	return dest, nil
}

// copyToTemp writes the content of src to a hidden temp file in the
// consume folder so a half-written copy is never visible under its real name
func (im *Importer) copyToTemp(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", errors.NewIOError(err, "failed to open %s", src)
	}
	defer in.Close()

	out, err := os.CreateTemp(im.dest, ".docwatcher-*.tmp")
	if err != nil {
		return "", errors.NewIOError(err, "failed to create temp file in %s", im.dest)
	}
	tmp := out.Name()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", errors.NewIOError(err, "failed to copy %s", src)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", errors.NewIOError(err, "failed to flush copy of %s", src)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", errors.NewIOError(err, "failed to close copy of %s", src)
	}
	return tmp, nil
}

// publish gives tmp its final name, trying name then <stem>_<n><ext> for n = 1, 2, ...
func (im *Importer) publish(tmp, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(im.dest, name)
	for n := 1; ; n++ {
		placed, err := place(tmp, candidate)
		if err != nil {
			return "", err
		}
		if placed {
			return candidate, nil
		}
		candidate = filepath.Join(im.dest, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

// place moves tmp to target unless target already exists.
// A hard link fails atomically on an existing target; filesystems without
// hard links fall back to check-then-rename.
func place(tmp, target string) (bool, error) {
	err := os.Link(tmp, target)
	if err == nil {
		os.Remove(tmp)
		return true, nil
	}
	if os.IsExist(err) {
		return false, nil
	}

	if _, err := os.Lstat(target); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.Rename(tmp, target); err != nil {
		return false, err
	}
	return true, nil
}

func (im *Importer) writeSidecar(src, dest string) (string, error) {
	base := filepath.Base(src)
	meta := Sidecar{
		Title:   strings.TrimSuffix(base, filepath.Ext(base)),
		Created: im.now().Format("2006-01-02"),
		Source:  im.sidecar.Source,
		Tags:    im.sidecar.Tags,
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}

	path := dest + ".json"
	if err := os.WriteFile(path, append(data, '\n'), am.DefaultFilePermissions); err != nil {
		return "", err
	}
	return path, nil
}
