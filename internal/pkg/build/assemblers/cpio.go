// Copyright (c) 2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package assemblers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sylabs/rfsbuild/pkg/sylog"
	"github.com/u-root/u-root/pkg/cpio"
)

// CpioAssembler creates a newc cpio archive, suitable as an initramfs.
type CpioAssembler struct{}

// Assemble writes every entry of tree to dest with a name relative to
// tree, the root itself being ".". No option is supported.
func (a *CpioAssembler) Assemble(tree, dest string, opts []string) (err error) {
	if len(opts) > 0 {
		sylog.Warningf("Ignoring cpio options %v", opts)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not create %s: %s", dest, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close %s: %s", dest, cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	rw := cpio.Newc.Writer(f)
	recorder := cpio.NewRecorder()

	err = filepath.Walk(tree, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(tree, path)
		if err != nil {
			return err
		}

		rec, err := recorder.GetRecord(path)
		if err != nil {
			return fmt.Errorf("could not read %s: %s", path, err)
		}
		rec.Name = rel

		err = rw.WriteRecord(rec)
		if c, ok := rec.ReaderAt.(io.Closer); ok {
			c.Close()
		}
		if err != nil {
			return fmt.Errorf("could not write %s to archive: %s", rel, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return cpio.WriteTrailer(rw)
}
