// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package command lists the external programs the engine delegates legacy
// archive formats to.
package command

const (
	Arc  = "arc" // Arc is the arc decompression command for SEA ARC archives.
	Zip7 = "7zz" // Zip7 is the 7-Zip command, used for ARJ, LHA and Microsoft Cabinet.
)

// Zip7 flags.
const (
	Zip7Extract   = "x"  // x extract with full paths
	Zip7Test      = "t"  // t test integrity
	Zip7Yes       = "-y" // -y assume yes to all queries
	Zip7OutputDir = "-o" // -o{dir} output directory, no space

	Zip7RenameExisting    = "-aou" // -aou auto rename extracted file
	Zip7OverwriteExisting = "-aoa" // -aoa overwrite all existing files
	Zip7SkipExisting      = "-aos" // -aos skip existing files
)

// Arc flags.
const (
	ArcExtract = "x" // x extract files into the working directory
	ArcTest    = "t" // t test archive integrity
)
