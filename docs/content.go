// Copyright (c) 2017-2019, Sylabs Inc. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package docs

// Global content for help and man pages
const (

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// main rfsbuild command
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	RfsbuildUse   string = `rfsbuild [global options...]`
	RfsbuildShort string = `
Build embedded root filesystems from a package-installed build environment`
	RfsbuildLong string = `
  rfsbuild turns a build environment, a root filesystem where the packages of
  a project were installed, into a target root filesystem. The target holds
  either the whole build environment or only the files of the packages listed
  by the project, and is stamped with version, license and mount metadata
  before being packaged as tar archive, cpio archive or squashfs image.`
	RfsbuildExample string = `
  $ rfsbuild help <command>
  $ rfsbuild build project.yaml /srv/buildenv /srv/target /srv/out
  $ rfsbuild licenses /srv/target --json licence.json`

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// extract
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	ExtractUse   string = `extract [extract options...] <PROJECT> <BUILDENV> <TARGET>`
	ExtractShort string = `Populate a target root filesystem from a build environment`
	ExtractLong  string = `
  The extract command copies the build environment into the target directory.

  When the project target section sets "tighten", only the files installed by
  the packages of "pkg-list" are copied. With "diet", the files of their
  dependencies are copied too. When neither is set the whole build environment
  is copied.

  With "setsel", dpkg is run inside the target to purge every package absent
  from "pkg-list". This requires root privileges.`
	ExtractExample string = `
  $ sudo rfsbuild extract project.yaml /srv/buildenv /srv/target
  $ sudo rfsbuild extract --progress project.yaml /srv/buildenv /srv/target`

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// package
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	PackageUse   string = `package <PROJECT> <TARGET> <OUTDIR>`
	PackageShort string = `Create the artifacts of a target root filesystem`
	PackageLong  string = `
  The package command creates the artifacts configured under the project
  "target/package" section in OUTDIR:

      tar:       gzip compressed tar archive
      cpio:      newc cpio archive, usable as an initramfs
      squashfs:  squashfs image

  A failing artifact is reported and skipped, the others are still created.`
	PackageExample string = `
  $ rfsbuild package project.yaml /srv/target /srv/out`

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// build
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	BuildUse   string = `build [build options...] <PROJECT> <BUILDENV> <TARGET> <OUTDIR>`
	BuildShort string = `Extract, stamp and package a target root filesystem`
	BuildLong  string = `
  The build command runs every step producing a target: it extracts the target
  from the build environment, writes its fstab and version stamp, collects the
  package licenses in OUTDIR and finally creates the configured artifacts.`
	BuildExample string = `
  $ sudo rfsbuild build project.yaml /srv/buildenv /srv/target /srv/out
  $ sudo rfsbuild build --no-licenses project.yaml /srv/buildenv /srv/target /srv/out`

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// licenses
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	LicensesUse   string = `licenses [licenses options...] <TREE>`
	LicensesShort string = `Collect the copyright files of the packages of a tree`
	LicensesLong  string = `
  The licenses command reads the copyright file of every package documented
  in usr/share/doc of TREE. The texts are printed, or written to the file given
  with --text, and can also be written as a JSON manifest with --json.`
	LicensesExample string = `
  $ rfsbuild licenses /srv/target
  $ rfsbuild licenses --text licence.txt --json licence.json /srv/target`

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// chroot
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	ChrootUse   string = `chroot [chroot options...] <TREE> -- <COMMAND> [ARGS...]`
	ChrootShort string = `Run a command inside a root filesystem (root user only)`
	ChrootLong  string = `
  The chroot command prepares TREE for running commands: it installs the
  foreign architecture interpreter, the host resolv.conf and apt.conf and a
  policy-rc.d refusing service starts, then mounts proc, sys, dev and dev/pts.
  COMMAND is run inside the tree and everything is undone afterwards.`
	ChrootExample string = `
  $ sudo rfsbuild chroot /srv/buildenv -- dpkg -l
  $ sudo rfsbuild chroot --interpreter qemu-arm-static /srv/buildenv -- apt-get update`

	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	// version
	// ~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
	VersionUse   string = `version`
	VersionShort string = `Show the version of rfsbuild`
)

// Global templates for help and usage strings
const (
	HelpTemplate string = `{{.Short}}

Usage:
  {{.UseLine}}

Description:{{.Long}}{{if .HasAvailableLocalFlags}}

Options:
{{.LocalFlags.FlagUsagesWrapped 80 | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}

Global Options:
{{.InheritedFlags.FlagUsagesWrapped 80 | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}
Available Commands:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasExample}}

Examples:{{.Example}}{{end}}
`

	UseTemplate string = `Usage:
  {{TraverseParentsUses . | trimTrailingWhitespaces}}{{if .HasAvailableSubCommands}} <command>

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}
`
)
