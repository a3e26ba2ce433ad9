// Copyright (c) 2018, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"path/filepath"
	"testing"

	"github.com/sylabs/rfsbuild/internal/pkg/buildcfg"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
)

func TestGenConf(t *testing.T) {
	dir := fs.NewDir(t, "genconf",
		fs.WithFile("update.in", "mksquashfs-path = \"/opt/squashfs/bin\"\n"),
		fs.WithFile("broken.in", "mksquashfs-path = \n"),
	)
	defer dir.Remove()

	updated := buildcfg.DefaultConfig()
	updated.MksquashfsPath = "/opt/squashfs/bin"

	tests := []struct {
		name    string
		in      string
		want    buildcfg.Config
		wantErr bool
	}{
		{name: "gen_new", want: buildcfg.DefaultConfig()},
		{name: "gen_missing_in", in: dir.Join("missing.in"), want: buildcfg.DefaultConfig()},
		{name: "gen_update", in: dir.Join("update.in"), want: updated},
		{name: "gen_broken", in: dir.Join("broken.in"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "rfsbuild.toml")

			err := genConf(tt.in, out)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unable to parse")
				return
			}
			assert.NilError(t, err)

			c, err := buildcfg.LoadConfig(out)
			assert.NilError(t, err)
			assert.DeepEqual(t, c, tt.want)
		})
	}
}
