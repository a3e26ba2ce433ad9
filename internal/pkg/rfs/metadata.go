// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rfs

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blang/semver"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/sylabs/rfsbuild/internal/pkg/license"
	"github.com/sylabs/rfsbuild/internal/pkg/project"
	"github.com/sylabs/rfsbuild/pkg/sylog"
	"golang.org/x/sys/unix"
	"golang.org/x/text/encoding/charmap"
)

// Files stamped into the target by a MetadataWriter.
const (
	VersionFile        = "etc/rfsbuild_version"
	UpdatedVersionFile = "etc/updated_version"
	BaseProjectFile    = "etc/rfsbuild_base.yaml"
	FstabFile          = "etc/fstab"

	docDir = "usr/share/doc"
)

// MetadataWriter stamps version, license and mount metadata into a
// tree.
type MetadataWriter struct {
	tree    *Tree
	version semver.Version

	now     func() time.Time
	buildID func() uuid.UUID
}

// NewMetadataWriter returns a writer for tree. toolVersion is the
// version of rfsbuild recorded in the version stamp and must be a valid
// semantic version.
func NewMetadataWriter(tree *Tree, toolVersion string) (*MetadataWriter, error) {
	v, err := semver.Make(strings.TrimPrefix(toolVersion, "v"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid tool version %q", toolVersion)
	}
	return &MetadataWriter{
		tree:    tree,
		version: v,
		now:     time.Now,
		buildID: uuid.NewV4,
	}, nil
}

func (w *MetadataWriter) ensureEtc() error {
	if err := w.tree.MkdirAll("etc", 0755); err != nil {
		return errors.Wrap(err, "could not create etc")
	}
	return nil
}

// WriteVersionStamp records the project name and version, the tool
// version, a build id and the build time, and stores a read-only copy
// of the project document in the tree.
func (w *MetadataWriter) WriteVersionStamp(cfg *project.Config) error {
	if err := w.ensureEtc(); err != nil {
		return err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s\n", cfg.Name(), cfg.Version())
	fmt.Fprintf(&b, "this RFS was generated by rfsbuild %s\n", w.version)
	fmt.Fprintf(&b, "build id: %s\n", w.buildID())
	fmt.Fprintf(&b, "%s\n", w.now().Format(time.ANSIC))

	if err := w.tree.WriteFile(VersionFile, b.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "could not write version stamp")
	}
	if err := w.tree.WriteFile(UpdatedVersionFile, []byte(cfg.Version()), 0644); err != nil {
		return errors.Wrap(err, "could not write updated version")
	}

	// a previous read-only copy can't be opened for writing
	if err := w.tree.Remove(BaseProjectFile); err != nil {
		return errors.Wrap(err, "could not remove previous project copy")
	}
	if err := w.tree.WriteFile(BaseProjectFile, cfg.Raw(), 0644); err != nil {
		return errors.Wrap(err, "could not write project copy")
	}
	return w.tree.Chmod(BaseProjectFile, 0400)
}

// decodeText returns b as a string, decoding it as Latin-1 when it is
// not valid UTF-8.
func decodeText(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (w *MetadataWriter) readCopyright(dir string) string {
	path := filepath.Join(dir, "copyright")
	b, err := ioutil.ReadFile(path)
	if err == nil {
		var text string
		if text, err = decodeText(b); err == nil {
			return text
		}
	}
	sylog.Debugf("Could not read %s: %s", path, err)
	return fmt.Sprintf("Error while processing license file %s: '%s'", path, errorText(err))
}

// errorText returns the system error message of err, capitalized the
// way strerror(3) reports it, or err itself for other errors.
func errorText(err error) string {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return err.Error()
	}
	msg := errno.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// WriteLicenseReport collects the copyright file of every package
// documentation directory of the tree. The texts are written to out
// when not nil, and to a JSON manifest at manifestPath when not empty.
// Unreadable copyright files are reported inline.
func (w *MetadataWriter) WriteLicenseReport(out io.Writer, manifestPath string) error {
	dirs, err := w.tree.List(docDir, true)
	if os.IsNotExist(err) {
		sylog.Warningf("No package documentation found in %s", w.tree.Root())
	} else if err != nil {
		return errors.Wrapf(err, "could not list %s", docDir)
	}

	manifest := license.NewManifest()
	sep := strings.Repeat("=", 80)
	for _, dir := range dirs {
		rel, _ := filepath.Rel(w.tree.Root(), dir)
		if !w.tree.IsDir(rel) {
			continue
		}
		pkg := filepath.Base(dir)
		text := w.readCopyright(dir)

		if out != nil {
			if _, err := fmt.Fprintf(out, "%s:\n%s\n%s\n\n", pkg, sep, text); err != nil {
				return errors.Wrap(err, "could not write license report")
			}
		}
		manifest.Add(pkg, text)
	}
	sylog.Verbosef("Collected %d license texts from %s", len(manifest.Licenses), w.tree.Path(docDir))

	if manifestPath != "" {
		return manifest.Write(manifestPath)
	}
	return nil
}

// WriteFstab writes the filesystem table configured for the target.
func (w *MetadataWriter) WriteFstab(cfg *project.Config) error {
	if err := w.ensureEtc(); err != nil {
		return err
	}

	var b bytes.Buffer
	for _, e := range cfg.Fstab() {
		b.WriteString(e.String())
	}
	if err := w.tree.WriteFile(FstabFile, b.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "could not write fstab")
	}
	return nil
}
