package common

// CobaltVersion is the current Cobalt version as a string.
const CobaltVersion string = "0.1.0"

// CobaltModuleFileName is the name for Cobalt module files.
const CobaltModuleFileName string = "cobalt-mod.toml"

// CobaltFileExt is the file extension for a Cobalt source file.
const CobaltFileExt string = ".co"
