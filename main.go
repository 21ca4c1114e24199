// =============================================================================
// Chemical Inventory to RDF Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   invrdf                  - Interactive shell (default)
//   invrdf convert <name>   - Convert <name>.csv once
//   invrdf validate <name>  - Check an inventory without writing output
//   invrdf history          - Show recent conversions
//   invrdf version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic: loaders, chemistry engine, converter,
//                      validation, journal, interactive shell
//   - pkg/           : Shared file utilities
//   - magefiles/     : Build automation
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/chem-inventory-rdf/cmd"
)

func main() {
	cmd.Execute()
}
